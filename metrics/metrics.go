// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package metrics 定时把统计数据输出到日志
package metrics

import (
	"fmt"
	"time"

	"github.com/33cn/rps/common/log"
	"github.com/33cn/rps/types"
	go_metrics "github.com/rcrowley/go-metrics"
)

var mlog = log.New("module", "metrics")

const defaultDuration = 60

type logger struct{}

func (logger) Printf(format string, v ...interface{}) {
	mlog.Info(fmt.Sprintf(format, v...))
}

// StartMetrics 开启统计输出, enableMetrics 为false时直接返回
func StartMetrics(cfg *types.Metrics) {
	if cfg == nil || !cfg.EnableMetrics {
		mlog.Info("metrics is disabled")
		return
	}
	duration := cfg.Duration
	if duration <= 0 {
		duration = defaultDuration
	}
	mlog.Info("StartMetrics", "duration", duration)
	go go_metrics.Log(go_metrics.DefaultRegistry, time.Duration(duration)*time.Second, logger{})
}

// Snapshot 当前所有统计项, 计数器为数值, 计时器为次数和平均耗时(ns)
func Snapshot() map[string]interface{} {
	out := make(map[string]interface{})
	go_metrics.DefaultRegistry.Each(func(name string, i interface{}) {
		switch m := i.(type) {
		case go_metrics.Counter:
			out[name] = m.Count()
		case go_metrics.Gauge:
			out[name] = m.Value()
		case go_metrics.Timer:
			t := m.Snapshot()
			out[name] = map[string]interface{}{"count": t.Count(), "mean": t.Mean()}
		}
	})
	return out
}
