// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/astrid-tui/internal/protocol"
)

var now = time.Date(2025, 6, 1, 18, 30, 0, 0, time.UTC)

func newTestController(t *testing.T, clock func() time.Time) *Controller {
	t.Helper()
	if clock == nil {
		clock = func() time.Time { return now }
	}
	return New(StateFunc(protocol.DefaultSnapshot),
		WithRand(rand.New(rand.NewSource(1))),
		WithClock(clock))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		message string
		want    Intent
	}{
		{"Hello Astrid", IntentGreeting},
		{"hey!", IntentGreeting},
		{"HELLO ASTRID, HOW ARE MY RESERVE WATER LEVELS?", IntentGreeting},
		{"how are my reserve water levels?", IntentStatus},
		{"what's going on", IntentStatus},
		{"solar generation today", IntentPower},
		{"current watts", IntentPower},
		{"battery", IntentBattery},
		{"remaining charge", IntentBattery},
		{"tank levels", IntentWater},
		{"when is the next service", IntentMaintenance},
		{"this is odd", IntentUnknown},
		{"", IntentUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.message).Intent)
		})
	}
}

func TestClassifyConfidence(t *testing.T) {
	assert.Equal(t, 0.9, Classify("hi").Confidence)
	assert.Equal(t, 0.3, Classify("banana").Confidence)
}

func TestProcessFillsTemplates(t *testing.T) {
	c := newTestController(t, nil)

	for i := 0; i < 10; i++ {
		r := c.Process("battery please")
		assert.Equal(t, IntentBattery, r.Analysis.Intent)
		assert.Contains(t, r.Text, "76%")
		assert.NotContains(t, r.Text, "{")
	}

	for i := 0; i < 10; i++ {
		r := c.Process("power consumption")
		assert.NotContains(t, r.Text, "{")
		assert.Contains(t, r.Text, "1344W")
	}
}

func TestProcessWaterAnswer(t *testing.T) {
	c := newTestController(t, nil)
	r := c.Process("tank")
	assert.Contains(t, r.Text, "water system sensors")
}

func TestMaintenanceSchedule(t *testing.T) {
	clock := now
	c := newTestController(t, func() time.Time { return clock })

	r := c.Process("maintenance")
	assert.Equal(t, "Last maintenance was 7 days ago. Next scheduled maintenance in 23 days.", r.Text)

	clock = now.Add(35 * 24 * time.Hour) // 42 days since
	r = c.Process("maintenance")
	assert.Equal(t, "System maintenance is overdue by 12 days. Recommend scheduling a service check.", r.Text)

	c.RecordMaintenance(clock)
	r = c.Process("inspect")
	assert.Equal(t, "Last maintenance was 0 days ago. Next scheduled maintenance in 30 days.", r.Text)
}

func TestHistoryIsCapped(t *testing.T) {
	c := newTestController(t, nil)
	for i := 0; i < MaxHistory+5; i++ {
		c.Process(fmt.Sprintf("message %d", i))
	}

	h := c.History()
	require.Len(t, h, MaxHistory)
	assert.Equal(t, "message 5", h[0].User)
	assert.Equal(t, fmt.Sprintf("message %d", MaxHistory+4), h[len(h)-1].User)
	assert.NotEmpty(t, h[0].ID)
}

func TestStatus(t *testing.T) {
	c := newTestController(t, nil)
	st := c.Status()
	assert.Equal(t, "normal", st.SystemStatus.Mode)
	assert.Equal(t, now.Add(-7*24*time.Hour), st.SystemStatus.LastMaintenance)
	assert.Equal(t, len(templates), st.ActivePatterns)
	assert.NotNil(t, st.UserPreferences)
}
