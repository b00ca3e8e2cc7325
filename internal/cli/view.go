package cli

import (
	"fmt"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"

	"researchagent/internal/client"
)

// NewView returns a TerminalView for interactive use, or a PlainView when
// plain output is requested or the CI environment variable is set.
func NewView(plain bool, log *logrus.Logger) client.View {
	if plain || os.Getenv("CI") != "" {
		return &PlainView{log: log}
	}
	return &TerminalView{}
}

// TerminalView renders job progress as an interactive progress bar.
type TerminalView struct {
	mu        sync.Mutex
	bar       *progressbar.ProgressBar
	lastAlert *client.Alert
}

func (v *TerminalView) Render(st client.UIState) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if st.Alert != nil && st.Alert != v.lastAlert {
		fmt.Fprintf(os.Stderr, "%s %s\n", alertPrefix(st.Alert.Kind), st.Alert.Message)
		v.lastAlert = st.Alert
	}

	if st.Busy {
		if v.bar == nil {
			v.bar = progressbar.NewOptions(100,
				progressbar.OptionSetDescription("Researching"),
				progressbar.OptionSetWidth(40),
				progressbar.OptionClearOnFinish(),
			)
		}
		if st.Message != "" {
			v.bar.Describe(st.Message)
		}
		_ = v.bar.Set(st.Percent)
		return
	}

	if v.bar != nil {
		if st.Failed {
			_ = v.bar.Clear()
		} else {
			_ = v.bar.Finish()
		}
		v.bar = nil
	}
}

// PlainView prints line-by-line progress suitable for CI logs.
type PlainView struct {
	log         *logrus.Logger
	mu          sync.Mutex
	lastPercent int
	lastMessage string
	lastAlert   *client.Alert
}

func (v *PlainView) Render(st client.UIState) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if st.Alert != nil && st.Alert != v.lastAlert {
		entry := v.log.WithField("alert", string(st.Alert.Kind))
		if st.Alert.Kind == client.AlertError {
			entry.Error(st.Alert.Message)
		} else {
			entry.Info(st.Alert.Message)
		}
		v.lastAlert = st.Alert
	}

	if st.Busy && (st.Percent != v.lastPercent || st.Message != v.lastMessage) {
		v.log.Infof("[%3d%%] %s", st.Percent, st.Message)
		v.lastPercent = st.Percent
		v.lastMessage = st.Message
	}
}

func alertPrefix(kind client.AlertKind) string {
	if kind == client.AlertError {
		return "error:"
	}
	return "info:"
}
