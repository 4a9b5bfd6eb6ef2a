package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomOutputForApplicationLog(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{ApplicationLogOutput: &buf})
	msg := "hello, world"
	log.Info(msg)
	assert.Contains(t, buf.String(), msg)
}

func TestCustomPrefixForApplicationLog(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{ApplicationLogOutput: &buf, ApplicationLogPrefix: "[httpcored] "})
	log.Info("started")
	assert.True(t, strings.HasPrefix(buf.String(), "[httpcored] "))
}

func TestApplicationLogJSONEnabled(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{ApplicationLogOutput: &buf, ApplicationLogJSONEnabled: true})
	log.Info("hello, world")

	parsed := make(map[string]interface{})
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	assert.Equal(t, "info", parsed["level"])
	assert.Equal(t, "hello, world", parsed["msg"])
}

func TestWithComponentAddsField(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{ApplicationLogOutput: &buf, ApplicationLogJSONEnabled: true})
	WithComponent("router").Info("built")

	parsed := make(map[string]interface{})
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	assert.Equal(t, "router", parsed["component"])
}
