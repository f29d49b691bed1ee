package envserver

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "envserver")
