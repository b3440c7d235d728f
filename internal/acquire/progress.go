package acquire

import "io"

// ProgressFunc receives download progress for a book. total is -1 when the
// size is unknown.
type ProgressFunc func(bookID string, read, total int64)

// reportEvery throttles progress callbacks to one per MiB.
const reportEvery = 1 << 20

// progressReader counts bytes read from r and reports them to fn.
type progressReader struct {
	r          io.Reader
	bookID     string
	total      int64
	read       int64
	lastReport int64
	fn         ProgressFunc
}

func newProgressReader(r io.Reader, bookID string, total int64, fn ProgressFunc) io.Reader {
	if fn == nil {
		return r
	}
	return &progressReader{r: r, bookID: bookID, total: total, fn: fn}
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.r.Read(p)
	pr.read += int64(n)

	done := err == io.EOF || (pr.total > 0 && pr.read >= pr.total)
	if n > 0 || done {
		if pr.read-pr.lastReport >= reportEvery || (done && pr.lastReport != pr.read) {
			pr.lastReport = pr.read
			pr.fn(pr.bookID, pr.read, pr.total)
		}
	}
	return n, err
}
