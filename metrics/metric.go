// Package metrics provides counters for the selector's runtime behavior,
// such as backend wait efficiency and hash table growth, useful for
// performance tuning of the readiness loop.
package metrics

import (
	"fmt"
	"time"

	"go.uber.org/atomic"
)

// All metrics definitions.
const (
	// Selector-level metrics.
	SelectorRegister = iota
	SelectorDeregister
	SelectorSelectCalls
	SelectorReadyMonitors
	SelectorWakeupWrites
	SelectorWakeupDrains

	// epoll backend metrics.
	EpollWait
	EpollNoWait
	EpollEvents

	// kqueue backend metrics.
	KqueueWait
	KqueueNoWait
	KqueueEvents

	// select backend metrics.
	SelectWait
	SelectNoWait
	SelectEvents

	// Endpoint-indexed map metrics.
	HashTableResize

	Max
)

var metrics [Max]atomic.Uint64

// Add adds delta to the named counter.
func Add(name int, delta uint64) {
	if name >= Max {
		return
	}
	metrics[name].Add(delta)
}

// Get returns the value of one counter.
func Get(name int) uint64 {
	if name >= Max {
		return 0
	}
	return metrics[name].Load()
}

// GetAll returns a snapshot of all counters.
func GetAll() [Max]uint64 {
	var m [Max]uint64
	for i := range metrics {
		m[i] = metrics[i].Load()
	}
	return m
}

// ShowMetricsOfPeriod shows the delta of every counter over duration d.
// It blocks for d before printing.
func ShowMetricsOfPeriod(d time.Duration) {
	old := GetAll()
	<-time.After(d)
	cur := GetAll()
	var m [Max]uint64
	for i := range metrics {
		m[i] = cur[i] - old[i]
	}
	showAll(m)
}

// ShowMetrics prints the current counters to stdout.
func ShowMetrics() {
	showAll(GetAll())
}

func showAll(m [Max]uint64) {
	fmt.Println("######### nio metrics (", time.Now().Format("2006-01-02 15:04:05"), ") ###########")
	showSelectorMetrics(m)
	showEpollMetrics(m)
	showKqueueMetrics(m)
	showSelectMetrics(m)
	fmt.Printf("%-59s: %d\n", "# hash table resizes", m[HashTableResize])
	fmt.Printf("\n")
}

func showSelectorMetrics(m [Max]uint64) {
	fmt.Printf("%-59s: %d\n", "# selector - registrations", m[SelectorRegister])
	fmt.Printf("%-59s: %d\n", "# selector - deregistrations", m[SelectorDeregister])
	fmt.Printf("%-59s: %d\n", "# selector - select() calls", m[SelectorSelectCalls])
	fmt.Printf("%-59s: %d\n", "# selector - monitors surfaced", m[SelectorReadyMonitors])
	fmt.Printf("%-59s: %d\n", "# selector - wakeup writes", m[SelectorWakeupWrites])
	fmt.Printf("%-59s: %d\n", "# selector - wakeup drains", m[SelectorWakeupDrains])
}

func showEpollMetrics(m [Max]uint64) {
	if m[EpollWait] == 0 {
		return
	}
	fmt.Printf("%-59s: %d\n", "# epoll - epoll_wait returns", m[EpollWait])
	fmt.Printf("%-59s: %d\n", "# epoll - epoll_wait called with timeout=0", m[EpollNoWait])
	fmt.Printf("%-59s: %d\n", "# epoll - total events", m[EpollEvents])
	fmt.Printf("%-59s: %.2f\n", "# epoll - average events per wait",
		float32(m[EpollEvents])/float32(m[EpollWait]))
}

func showKqueueMetrics(m [Max]uint64) {
	if m[KqueueWait] == 0 {
		return
	}
	fmt.Printf("%-59s: %d\n", "# kqueue - kevent waits", m[KqueueWait])
	fmt.Printf("%-59s: %d\n", "# kqueue - kevent called with timeout=0", m[KqueueNoWait])
	fmt.Printf("%-59s: %d\n", "# kqueue - total events", m[KqueueEvents])
	fmt.Printf("%-59s: %.2f\n", "# kqueue - average events per wait",
		float32(m[KqueueEvents])/float32(m[KqueueWait]))
}

func showSelectMetrics(m [Max]uint64) {
	if m[SelectWait] == 0 {
		return
	}
	fmt.Printf("%-59s: %d\n", "# select - select() waits", m[SelectWait])
	fmt.Printf("%-59s: %d\n", "# select - select() called with timeout=0", m[SelectNoWait])
	fmt.Printf("%-59s: %d\n", "# select - total events", m[SelectEvents])
	fmt.Printf("%-59s: %.2f\n", "# select - average events per wait",
		float32(m[SelectEvents])/float32(m[SelectWait]))
}
