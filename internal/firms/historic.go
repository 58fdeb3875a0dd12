package firms

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gammazero/workerpool"
	"github.com/gocarina/gocsv"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/sepal-contrib/planet-active-fires-explorer/internal/logger"
)

const (
	concurrentYearDownloads = 2
	memberWorkers           = 4
)

func (c *Client) fetchHistoric(ctx context.Context, req Request) ([]Detection, error) {
	if _, err := rangeDays(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}

	start := truncateDay(req.StartDate)
	end := truncateDay(req.EndDate)
	sensor := req.SatSource.Sensor()

	years := make([]int, 0, end.Year()-start.Year()+1)
	for y := start.Year(); y <= end.Year(); y++ {
		years = append(years, y)
	}

	archives := make([]string, len(years))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrentYearDownloads)
	for i, year := range years {
		i, year := i, year
		g.Go(func() error {
			path, err := c.ensureArchive(gctx, sensor, year)
			if err != nil {
				return err
			}
			archives[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	from := start.Format(dateLayout)
	to := end.Format(dateLayout)
	var rows []Detection
	for _, path := range archives {
		yearRows, err := readArchive(path)
		if err != nil {
			return nil, err
		}
		for _, r := range yearRows {
			d := r.AcqDate
			if len(d) > 10 {
				d = d[:10]
			}
			if d >= from && d <= to {
				rows = append(rows, r)
			}
		}
	}
	logger.Infof("%d historic detections between %s and %s", len(rows), from, to)
	if rows == nil {
		rows = []Detection{}
	}
	return rows, nil
}

// ArchivePath is where the yearly archive of a sensor is cached.
func (c *Client) ArchivePath(sensor string, year int) string {
	return filepath.Join(c.historicDir, fmt.Sprintf("historic_%s_fires_%d.zip", sensor, year))
}

// ensureArchive downloads the yearly archive unless it is already on disk.
// The file only appears under its final name once fully written.
func (c *Client) ensureArchive(ctx context.Context, sensor string, year int) (string, error) {
	path := c.ArchivePath(sensor, year)
	if _, err := os.Stat(path); err == nil {
		logger.Debugf("using cached archive %s", path)
		return path, nil
	}
	if err := os.MkdirAll(c.historicDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create historic directory: %w", err)
	}

	u := fmt.Sprintf("%s/%s_%d_all_countries.zip", c.historicBase, sensor, year)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	logger.Infof("downloading %s", u)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download %d archive: %w", year, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download %d archive: status %d", year, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(c.historicDir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp archive: %w", err)
	}
	tmpName := tmp.Name()

	writers := []io.Writer{tmp}
	if c.progress != nil {
		writers = append(writers, &progressWriter{total: resp.ContentLength, fn: c.progress})
	}
	if c.progressBar {
		bar := progressbar.DefaultBytes(resp.ContentLength, fmt.Sprintf("%s %d", sensor, year))
		defer bar.Finish()
		writers = append(writers, bar)
	}

	_, copyErr := io.Copy(io.MultiWriter(writers...), resp.Body)
	closeErr := tmp.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(tmpName)
		if copyErr != nil {
			return "", fmt.Errorf("failed to write %d archive: %w", year, copyErr)
		}
		return "", fmt.Errorf("failed to close %d archive: %w", year, closeErr)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to store %d archive: %w", year, err)
	}
	return path, nil
}

type progressWriter struct {
	mu    sync.Mutex
	read  int64
	total int64
	fn    ProgressFunc
}

func (p *progressWriter) Write(b []byte) (int, error) {
	p.mu.Lock()
	p.read += int64(len(b))
	read := p.read
	p.mu.Unlock()
	p.fn(read, p.total)
	return len(b), nil
}

// readArchive parses every CSV member of the archive in parallel and
// concatenates them in archive order.
func readArchive(path string) ([]Detection, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", path, err)
	}
	defer zr.Close()

	var members []*zip.File
	for _, f := range zr.File {
		if strings.HasSuffix(strings.ToLower(f.Name), ".csv") {
			members = append(members, f)
		}
	}

	results := make([][]Detection, len(members))
	failures := make([]error, len(members))
	wp := workerpool.New(memberWorkers)
	for i, f := range members {
		i, f := i, f
		wp.Submit(func() {
			results[i], failures[i] = readMember(f)
		})
	}
	wp.StopWait()

	var rows []Detection
	for i := range members {
		if failures[i] != nil {
			return nil, failures[i]
		}
		rows = append(rows, results[i]...)
	}
	return rows, nil
}

func readMember(f *zip.File) ([]Detection, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open member %s: %w", f.Name, err)
	}
	defer rc.Close()

	var rows []Detection
	if err := gocsv.Unmarshal(rc, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse member %s: %w", f.Name, err)
	}
	return rows, nil
}
