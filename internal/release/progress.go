package release

import "io"

// ProgressFunc receives transfer progress as a whole percentage. Reported
// values never decrease and finish at 100 exactly once for a full read.
type ProgressFunc func(percent int)

// progressReader wraps the artifact stream and reports percentage progress
// as the HTTP transport consumes it.
type progressReader struct {
	r        io.Reader
	total    int64
	read     int64
	lastPct  int
	progress ProgressFunc
}

func newProgressReader(r io.Reader, total int64, progress ProgressFunc) *progressReader {
	return &progressReader{r: r, total: total, lastPct: -1, progress: progress}
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.read += int64(n)
		p.report()
	}
	return n, err
}

func (p *progressReader) report() {
	if p.progress == nil || p.total <= 0 {
		return
	}
	pct := int(p.read * 100 / p.total)
	if pct > 100 {
		pct = 100
	}
	if pct > p.lastPct {
		p.lastPct = pct
		p.progress(pct)
	}
}
