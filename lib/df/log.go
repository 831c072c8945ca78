package df

import "github.com/sirupsen/logrus"

// Log is the shared base entry - replaced by cmd once logging is configured
var Log = logrus.NewEntry(logrus.StandardLogger())

//SetLog swaps the shared base entry
func SetLog(log *logrus.Entry) {
	if log != nil {
		Log = log
	}
}
