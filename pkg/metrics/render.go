package metrics

import "time"

// RenderUsage summarizes the work done for one render request.
type RenderUsage struct {
	Variants   int   `json:"variants"`
	Succeeded  int   `json:"succeeded"`
	Failed     int   `json:"failed"`
	Bytes      int64 `json:"bytes"`
	DurationMs int64 `json:"durationMs"`
}

// IsZero reports whether usage data is absent.
func (u RenderUsage) IsZero() bool {
	return u.Variants == 0 && u.Bytes == 0 && u.DurationMs == 0
}

// Observe records a finished variant.
func (u *RenderUsage) Observe(size int, err error) {
	u.Variants++
	if err != nil {
		u.Failed++
		return
	}
	u.Succeeded++
	u.Bytes += int64(size)
}

// Finish stamps the elapsed time since start.
func (u *RenderUsage) Finish(start time.Time) {
	u.DurationMs = time.Since(start).Milliseconds()
}
