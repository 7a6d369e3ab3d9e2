package logging

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the service-wide logrus instance.
var Logger = logrus.New()

// CustomFormatter writes one line per entry:
// Date, Time, Event Source, Event Type, Event ID, Message, then any fields
// sorted by key and the caller location when caller reporting is on.
type CustomFormatter struct {
	SystemName string
	// Zone defaults to CEST.
	Zone *time.Location
}

func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	b := entry.Buffer
	if b == nil {
		b = &bytes.Buffer{}
	}

	zone := f.Zone
	if zone == nil {
		zone = timezoneCEST()
	}
	ts := entry.Time.In(zone)

	fmt.Fprintf(b, "Date: %s, Time: %s, Event Source: %s, Event Type: %s, Event ID: %s, Message: %s",
		ts.Format("2006-01-02"), ts.Format("15:04:05"), f.SystemName,
		strings.ToUpper(entry.Level.String()), uuid.NewString(), entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, ", %s: %v", k, entry.Data[k])
	}

	if entry.HasCaller() {
		fmt.Fprintf(b, ", Location: %s:%d", filepath.Base(entry.Caller.File), entry.Caller.Line)
	}
	b.WriteByte('\n')

	return b.Bytes(), nil
}

func timezoneCEST() *time.Location {
	return time.FixedZone("CEST", 2*60*60)
}

// InitLogger configures Logger. With an empty filename entries go to stderr,
// otherwise to a rotating file.
func InitLogger(systemName, filename, level string) error {
	if filename != "" {
		dir := filepath.Dir(filename)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0700); err != nil {
				return fmt.Errorf("failed to create log directory: %w", err)
			}
		}

		Logger.SetOutput(&lumberjack.Logger{
			Filename:   filename,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		})
	} else {
		Logger.SetOutput(os.Stderr)
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}

	Logger.SetFormatter(&CustomFormatter{SystemName: systemName})
	Logger.SetLevel(lvl)
	Logger.SetReportCaller(true)
	return nil
}
