// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package util

import (
	"runtime"
	"time"

	log "github.com/sirupsen/logrus"
)

// PerfStats provides a snapshot of elapsed time and memory allocation at a
// given point in time.
type PerfStats struct {
	// Starting time
	startTime time.Time
	// Starting total memory allocation
	startMem uint64
	// Starting number of gc events
	startGc uint32
}

// NewPerfStats creates a new snapshot of the current time and amount of memory
// allocated.
func NewPerfStats() *PerfStats {
	var m runtime.MemStats
	//
	startTime := time.Now()
	//
	runtime.ReadMemStats(&m)
	//
	return &PerfStats{startTime, m.TotalAlloc, m.NumGC}
}

// Elapsed returns the time passed since this snapshot was taken.
func (p *PerfStats) Elapsed() time.Duration {
	return time.Since(p.startTime)
}

// Log logs (at debug level) the difference between the state now and as it was
// when the PerfStats object was created.  Allocations are reported in kilobytes,
// since a machine's memory is typically small.
func (p *PerfStats) Log(prefix string) {
	var m runtime.MemStats
	//
	runtime.ReadMemStats(&m)
	//
	alloc := (m.TotalAlloc - p.startMem) / 1024
	gcs := m.NumGC - p.startGc
	//
	log.Debugf("%s took %v using %vKb (%v GC events)", prefix, p.Elapsed(), alloc, gcs)
}
