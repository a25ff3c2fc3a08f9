package contract

import "github.com/sirupsen/logrus"

var log = logrus.WithField("prefix", "contract")
