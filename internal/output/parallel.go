package output

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/inodb/vibe-exon/internal/genepred"
)

// Located is the outcome of locating the record at Index of the input slice.
type Located struct {
	Index  int
	Record *genepred.Record
	Err    error
}

// LocateParallel locates recs on a pool of workers that claim records by
// slice position. Outcomes arrive in completion order on the returned
// channel, which is closed once every record is done or stop is closed.
// A consumer that quits early must close stop. workers < 1 means one worker
// per CPU.
func LocateParallel(recs []*genepred.Record, workers int, stop <-chan struct{}) <-chan Located {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	workers = max(1, min(workers, len(recs)))

	out := make(chan Located, workers)
	var (
		cursor atomic.Int64
		wg     sync.WaitGroup
	)
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for {
				i := int(cursor.Add(1) - 1)
				if i >= len(recs) {
					return
				}
				l := Located{Index: i, Record: recs[i], Err: genepred.Locate(recs[i])}
				select {
				case out <- l:
				case <-stop:
					return
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// InOrder calls fn with the outcomes for positions 0..n-1 in order, holding
// back any that arrive early. It returns the first error from fn without
// reading further.
func InOrder(results <-chan Located, n int, fn func(Located) error) error {
	held := make([]Located, n)
	arrived := make([]bool, n)
	next := 0
	for l := range results {
		held[l.Index], arrived[l.Index] = l, true
		for next < n && arrived[next] {
			if err := fn(held[next]); err != nil {
				return err
			}
			held[next] = Located{}
			next++
		}
	}
	return nil
}

// LocateAll locates recs with the given number of workers and calls fn for
// each in input order. It stops at the first locate or callback error.
func LocateAll(recs []*genepred.Record, workers int, fn func(*genepred.Record) error) error {
	stop := make(chan struct{})
	defer close(stop)
	return InOrder(LocateParallel(recs, workers, stop), len(recs), func(l Located) error {
		if l.Err != nil {
			return l.Err
		}
		return fn(l.Record)
	})
}
