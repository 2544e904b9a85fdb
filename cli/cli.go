package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"zonecheck/clients"
	"zonecheck/zone"
)

var (
	_csvPath     string
	_kmlPath     string
	_outPath     string
	_coordColumn string
	_logLevel    string
	_logCallers  bool
)

var mainCmd = &cobra.Command{
	Use:          "zonecheck",
	Short:        "Flag client GPS records that fall inside a KML sales zone",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	// A .env file next to the binary may supply the file paths, flags win.
	_ = godotenv.Load(".env")

	logrus.SetFormatter(&logrus.TextFormatter{
		DisableColors: true,
		FullTimestamp: true,
	})

	mainCmd.PersistentFlags().StringVar(&_csvPath, "csv", envDefault("ZONECHECK_CSV", "direccion_f_clientes.csv"), "Path to the ;-separated client CSV")
	mainCmd.PersistentFlags().StringVar(&_kmlPath, "kml", envDefault("ZONECHECK_KML", "zona.kml"), "Path to the KML file with the zone boundaries")
	mainCmd.PersistentFlags().StringVar(&_outPath, "out", envDefault("ZONECHECK_OUT", "clientes_con_zona.csv"), "Path to write the annotated CSV to")
	mainCmd.PersistentFlags().StringVar(&_coordColumn, "column", envDefault("ZONECHECK_COLUMN", "Punto gps"), "Name of the CSV column holding the lat,lon string")
	mainCmd.PersistentFlags().StringVar(&_logLevel, "logLevel", "info", "Log level to use")
	mainCmd.PersistentFlags().BoolVar(&_logCallers, "logCallers", false, "Whether to log callers")
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func run(cmd *cobra.Command, args []string) error {
	level, err := logrus.ParseLevel(_logLevel)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	logrus.SetLevel(level)
	logrus.SetReportCaller(_logCallers)

	log := logrus.WithField("component", "run")

	table, err := clients.Load(_csvPath, _coordColumn)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"file":    _csvPath,
		"clients": len(table.Records),
	}).Info("loaded client records")

	zs, err := zone.LoadKML(_kmlPath)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"file":     _kmlPath,
		"polygons": zs.Len(),
	}).Info("loaded zone boundaries")

	summary := table.Annotate(zs)
	log.WithFields(logrus.Fields{
		"clients":      summary.Total,
		"withGeometry": summary.WithGeometry,
		"inside":       summary.Inside,
		"outside":      summary.Outside,
	}).Info("checked zone membership")

	// Output is only written once every step above has succeeded, a fatal
	// load error never leaves a partial file behind.
	if err := clients.Write(_outPath, table); err != nil {
		return err
	}
	log.WithField("file", _outPath).Info("wrote annotated records")

	return nil
}

// Run runs the cli app
func Run() {
	if err := mainCmd.Execute(); err != nil {
		logrus.WithError(err).Error("run failed")
		os.Exit(1)
	}
}
