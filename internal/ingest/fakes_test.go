package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/sismika/psgc-geo-etl/internal/domain"
)

// memStore is an in-memory location store.
type memStore struct {
	mu        sync.Mutex
	byCode    map[domain.Code]domain.LocationRecord
	lookupErr error
	order     []domain.Code
}

func newMemStore(recs ...domain.LocationRecord) *memStore {
	s := &memStore{byCode: make(map[domain.Code]domain.LocationRecord)}
	for _, r := range recs {
		s.byCode[r.Code] = r
		s.order = append(s.order, r.Code)
	}
	return s
}

func (s *memStore) LookupLocation(_ context.Context, code domain.Code) (domain.LocationRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lookupErr != nil {
		return domain.LocationRecord{}, false, s.lookupErr
	}
	r, ok := s.byCode[code]
	return r, ok, nil
}

func (s *memStore) InsertIfAbsent(_ context.Context, rec domain.LocationRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byCode[rec.Code]; ok {
		return false, nil
	}
	s.byCode[rec.Code] = rec
	s.order = append(s.order, rec.Code)
	return true, nil
}

func (s *memStore) NextUnresolved(_ context.Context) (domain.LocationRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, code := range s.order {
		if r := s.byCode[code]; r.Status == domain.StatusAddressParsed {
			return r, true, nil
		}
	}
	return domain.LocationRecord{}, false, nil
}

func (s *memStore) ApplyGeocode(_ context.Context, code domain.Code, outcome domain.GeocodeOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.byCode[code]
	point, bbox, result := outcome.Point, outcome.BoundingBox, outcome.Result
	r.Point, r.BoundingBox, r.Geocode = &point, &bbox, &result
	r.Status = domain.StatusCompleted
	s.byCode[code] = r
	return nil
}

func (s *memStore) MarkRequested(_ context.Context, code domain.Code) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.byCode[code]
	r.Status = domain.StatusRequested
	s.byCode[code] = r
	return nil
}

func (s *memStore) get(code domain.Code) domain.LocationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byCode[code]
}

func (s *memStore) codes() []domain.Code {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Code, 0, len(s.byCode))
	for c := range s.byCode {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// sliceSource replays records as a LocationSource.
type sliceSource struct {
	recs []domain.LocationRecord
	err  error
}

func (s *sliceSource) Read() (domain.LocationRecord, error) {
	if len(s.recs) == 0 {
		if s.err != nil {
			return domain.LocationRecord{}, s.err
		}
		return domain.LocationRecord{}, io.EOF
	}
	r := s.recs[0]
	s.recs = s.recs[1:]
	return r, nil
}

// mapGeocoder answers searches from a fixed table.
type mapGeocoder struct {
	results map[string]domain.GeocodeResult
	err     error
	queries []string
}

func (m *mapGeocoder) Search(_ context.Context, query string) (domain.GeocodeResult, bool, error) {
	m.queries = append(m.queries, query)
	if m.err != nil {
		return domain.GeocodeResult{}, false, m.err
	}
	r, ok := m.results[query]
	return r, ok, nil
}

// memQuakes is an in-memory earthquake store.
type memQuakes struct {
	pending []domain.Earthquake
	saved   []domain.Earthquake
	saveErr error
	// claimErr is returned alongside the pending earthquake with that ID.
	claimErr map[string]error
}

func (m *memQuakes) ClaimUntitled(_ context.Context) (domain.Earthquake, bool, error) {
	if len(m.pending) == 0 {
		return domain.Earthquake{}, false, nil
	}
	eq := m.pending[0]
	m.pending = m.pending[1:]
	return eq, true, m.claimErr[eq.ID]
}

func (m *memQuakes) SaveAttribution(_ context.Context, eq domain.Earthquake) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, eq)
	return nil
}

var errStoreDown = errors.New("store unavailable")

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func loc(code, name string) domain.LocationRecord {
	return domain.LocationRecord{Code: domain.Code(code), Name: name, Status: domain.StatusAddressParsed}
}

func geocodeHit(lat, lon string) domain.GeocodeResult {
	return domain.GeocodeResult{
		Lat:         lat,
		Lon:         lon,
		DisplayName: "hit",
		BoundingBox: []string{"14.4", "14.6", "120.9", "121.1"},
	}
}
