package application

import (
	"sync"
	"time"
)

const heatmapCapacity = 1024

// Heatmap is an in-memory ring of recent activity coordinates. It holds at
// most heatmapCapacity points; older points are overwritten. State is not
// persisted and resets on restart.
type Heatmap struct {
	mu     sync.Mutex
	points []HeatmapPoint
	next   int
	full   bool
	now    func() time.Time
}

// NewHeatmap constructs an empty heatmap.
func NewHeatmap(now func() time.Time) *Heatmap {
	if now == nil {
		now = time.Now
	}
	return &Heatmap{points: make([]HeatmapPoint, heatmapCapacity), now: now}
}

// Record adds one activity point, evicting the oldest when full.
func (h *Heatmap) Record(x, y float64, kind string) {
	if kind == "" {
		kind = "activity"
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.points[h.next] = HeatmapPoint{X: x, Y: y, Kind: kind, RecordedAt: h.now()}
	h.next++
	if h.next == len(h.points) {
		h.next = 0
		h.full = true
	}
}

// Points returns a copy of the recorded points, oldest first.
func (h *Heatmap) Points() []HeatmapPoint {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.full {
		out := make([]HeatmapPoint, h.next)
		copy(out, h.points[:h.next])
		return out
	}
	out := make([]HeatmapPoint, 0, len(h.points))
	out = append(out, h.points[h.next:]...)
	out = append(out, h.points[:h.next]...)
	return out
}
