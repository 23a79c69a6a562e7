// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package metrics

import (
	"testing"

	"github.com/33cn/rps/types"
	go_metrics "github.com/rcrowley/go-metrics"
	"github.com/stretchr/testify/assert"
)

func TestSnapshot(t *testing.T) {
	c := go_metrics.GetOrRegisterCounter("test.metrics.counter", nil)
	c.Inc(3)
	tm := go_metrics.GetOrRegisterTimer("test.metrics.timer", nil)
	tm.Update(10)

	snap := Snapshot()
	assert.Equal(t, int64(3), snap["test.metrics.counter"])
	timer, ok := snap["test.metrics.timer"].(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, int64(1), timer["count"])
}

func TestStartMetricsDisabled(t *testing.T) {
	StartMetrics(nil)
	StartMetrics(&types.Metrics{EnableMetrics: false})
	StartMetrics(&types.Metrics{EnableMetrics: true, Duration: 3600})
}
