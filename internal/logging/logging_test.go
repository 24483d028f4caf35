package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNew_JSONFormat(t *testing.T) {
	log := New("json")
	if _, ok := log.Formatter.(*logrus.JSONFormatter); !ok {
		t.Errorf("expected JSONFormatter, got %T", log.Formatter)
	}
}

func TestNew_DefaultsToText(t *testing.T) {
	for _, format := range []string{"", "text", "bogus"} {
		log := New(format)
		if _, ok := log.Formatter.(*logrus.TextFormatter); !ok {
			t.Errorf("format %q: expected TextFormatter, got %T", format, log.Formatter)
		}
	}
}
