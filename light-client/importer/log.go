package importer

import "github.com/sirupsen/logrus"

var log = logrus.WithField("prefix", "importer")
