package viz

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "viz")
