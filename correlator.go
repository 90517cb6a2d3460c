package foam

import (
	"sort"
	"sync"
)

// CorrelatedBundle is the result of successfully assembling every catalog
// entry for one train id.
type CorrelatedBundle struct {
	Catalog *Catalog
	Meta map[string]*SourceMetadata
	Raw RawValues
	Processed *ProcessedData
	TrainID int64
}

type trainBucket struct {
	meta map[string]*SourceMetadata
	raw RawValues
}

func newTrainBucket() *trainBucket {
	return &trainBucket{
		meta: make(map[string]*SourceMetadata),
		raw: make(RawValues),
	}
}

// merge folds an incoming packet's contribution into the bucket. Modular
// sources accumulate their nested per-module maps across packets instead of
// overwriting wholesale, since a modular detector's modules routinely
// arrive split across several packets.
func (b *trainBucket) merge(catalog *Catalog, meta map[string]*SourceMetadata, raw RawValues) {
	for k, v := range meta {
		b.meta[k] = v
	}
	for k, v := range raw {
		d, ok := catalog.Get(k)
		if ok && d.IsModular() {
			existing, has := b.raw[k]
			if !has {
				nested := make(map[string]interface{}, len(v))
				for mk, mv := range v {
					nested[mk] = mv
				}
				b.raw[k] = nested
				continue
			}
			for mk, mv := range v {
				existing[mk] = mv
			}
			continue
		}
		b.raw[k] = v
	}
}

// complete reports whether the bucket has seen every catalog key, where a
// modular entry additionally requires every configured module index to be
// present, not merely one.
func (b *trainBucket) complete(catalog *Catalog) bool {
	for _, key := range catalog.Keys() {
		d, _ := catalog.Get(key)
		if d != nil && d.IsModular() {
			nested, ok := b.raw[key]
			if !ok || len(nested) < len(d.Modules) {
				return false
			}
			continue
		}
		if _, ok := b.meta[key]; !ok {
			return false
		}
	}
	return true
}

// TrainCorrelator converts a stream of raw packets into a stream of
// correlated bundles, in train-id order, with bounded buffering.
type TrainCorrelator struct {
	mu sync.Mutex
	catalog *Catalog
	cacheSize int
	buckets map[int64]*trainBucket
	order []int64 // ascending train ids currently buffered
	latest int64
}

const defaultCacheSize = 20

// NewTrainCorrelator constructs a correlator bound to a catalog. cacheSize
// <= 0 uses the default of 20.
func NewTrainCorrelator(catalog *Catalog, cacheSize int) *TrainCorrelator {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	return &TrainCorrelator{
		catalog: catalog,
		cacheSize: cacheSize,
		buckets: make(map[int64]*trainBucket),
		latest: -1,
	}
}

// Reset clears the buffer and resets the latest-correlated sentinel to -1.
func (c *TrainCorrelator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buckets = make(map[int64]*trainBucket)
	c.order = nil
	c.latest = -1
}

// Latest returns the most recently emitted (correlated) train id, or -1 if
// none has been emitted yet.
func (c *TrainCorrelator) Latest() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest
}

func (c *TrainCorrelator) insertOrdered(tid int64) {
	i := sort.Search(len(c.order), func(i int) bool { return c.order[i] >= tid })
	if i < len(c.order) && c.order[i] == tid {
		return
	}
	c.order = append(c.order, 0)
	copy(c.order[i+1:], c.order[i:])
	c.order[i] = tid
}

func (c *TrainCorrelator) removeOrdered(tid int64) {
	i := sort.Search(len(c.order), func(i int) bool { return c.order[i] >= tid })
	if i < len(c.order) && c.order[i] == tid {
		c.order = append(c.order[:i], c.order[i+1:]...)
	}
}

// Correlate runs Transform against the catalog and folds the result into
// the train-id-keyed buffer. It returns the newly completed
// bundle (nil if none completed this call) and the list of train ids that
// exited the buffer without ever completing.
func (c *TrainCorrelator) Correlate(packet RawTrainBundle, sourceType string) (*CorrelatedBundle, []int64, error) {
	raw, meta, tid, err := Transform(packet, c.catalog, sourceType)
	if err != nil {
		return nil, nil, err
	}
	if tid <= 0 {
		return nil, nil, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var dropped []int64

	bucket, exists := c.buckets[tid]
	if !exists {
		bucket = newTrainBucket()
		c.buckets[tid] = bucket
		c.insertOrdered(tid)
	}
	bucket.merge(c.catalog, meta, raw)

	var emitted *CorrelatedBundle
	if bucket.complete(c.catalog) {
		emitted = &CorrelatedBundle{
			Catalog: c.catalog.Snapshot(),
			Meta: bucket.meta,
			Raw: bucket.raw,
			Processed: NewProcessedData(tid),
			TrainID: tid,
		}

		// Pop every buffered train id strictly older than this tid.
		for len(c.order) > 0 && c.order[0] < tid {
			old := c.order[0]
			c.order = c.order[1:]
			delete(c.buckets, old)
			dropped = append(dropped, old)
		}
		delete(c.buckets, tid)
		c.removeOrdered(tid)
		c.latest = tid
	}

	// Bound the buffer regardless of emission this call.
	for len(c.order) > c.cacheSize {
		old := c.order[0]
		c.order = c.order[1:]
		delete(c.buckets, old)
		dropped = append(dropped, old)
	}

	return emitted, dropped, nil
}
