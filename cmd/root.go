package cmd

/*
Copyright © 2026 Paulson McIntyre <paulson@fragforce.org>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

import (
	"fmt"
	"os"
	"strings"

	"github.com/fragforce/campusevents/lib/df"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	cfgName   = ".campusevents"
	envPrefix = "CFG"
)

var (
	cfgFile     string
	rootLog     *logrus.Logger
	log         *logrus.Entry
	AmDebugging bool
)

var rootCmd = &cobra.Command{
	Use:   "campusevents",
	Short: "Scrapes the university events page and serves it as JSON",
	Long: `Opens the events page in a headless browser, pulls out the first few event
cards and serves them on /api/events. Run "campusevents web" to serve or
"campusevents scrape" for a one-off scrape.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.WithFields(logrus.Fields{
			"cmd":  cmd.Name(),
			"args": args,
		}).Debug("Starting up")
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		log.WithField("cmd", cmd.Name()).Debug("All done")
	},
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	viper.SetDefault("log.level", logrus.InfoLevel.String())
	viper.SetDefault("log.format", "json") // json or text
	viper.SetDefault("log.caller", true)
	viper.SetDefault("debug", false)

	cobra.OnInitialize(initConfig, initLogging)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/"+cfgName+".yaml)")
	rootCmd.PersistentFlags().BoolVarP(&AmDebugging, "debug", "d", false, "Enable debug mode")
}

//initConfig loads the config file (flag, then $HOME, then the working dir) and the environment
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		cobra.CheckErr(err)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(cfgName)
	}
	bindEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		// Asked for explicitly, so not finding it is fatal
		cobra.CheckErr(err)
	}

	if viper.GetBool("debug") {
		AmDebugging = true
	}
}

//bindEnv makes every key settable as CFG_<KEY> with dots as underscores (CFG_SCRAPE_URL) and
// lets the platform's bare PORT win over port
func bindEnv() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if p := os.Getenv("PORT"); p != "" {
		viper.Set("port", p)
	}
}

func initLogging() {
	var err error
	rootLog, err = newRootLogger(viper.GetString("log.level"), viper.GetString("log.format"), viper.GetBool("log.caller"), AmDebugging)
	cobra.CheckErr(err)

	log = rootLog.WithField("app", rootCmd.Name())
	df.SetLog(log)
	log.WithField("log.level", rootLog.GetLevel().String()).Debug("Init'ed logging")
}

//newRootLogger builds the process logger; debug overrides level
func newRootLogger(level, format string, caller, debug bool) (*logrus.Logger, error) {
	l := logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("bad log level: %w", err)
	}
	if debug {
		lvl = logrus.DebugLevel
	}
	l.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "", "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("bad log format %q", format)
	}
	l.SetReportCaller(caller)

	return l, nil
}
