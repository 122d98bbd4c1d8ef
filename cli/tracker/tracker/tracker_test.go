package tracker

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/daniil11ru/geotrack/cli/tracker/storage"
	"github.com/daniil11ru/geotrack/libs/codec"
	"github.com/daniil11ru/geotrack/libs/geo"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetOutput(io.Discard)
}

type journal struct {
	mu   sync.Mutex
	legs []storage.Leg
}

func (j *journal) Save(m interface{ ToBytes() ([]byte, error) }) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.legs = append(j.legs, m.(storage.Leg))
	return nil
}

func payload(lat, lon float64) []byte {
	return []byte(fmt.Sprintf(`{"latitude": %v, "longitude": %v}`, lat, lon))
}

func TestTracker_FirstMessageDoesNotCountDistance(t *testing.T) {
	state := &State{}
	tr := New(state, codec.JSON{}, nil)

	tr.OnMessage(payload(10, 20))

	require.NotNil(t, state.LastPosition)
	assert.Equal(t, geo.NewCoordinate(10, 20), *state.LastPosition)
	assert.Equal(t, 0.0, state.TotalDistanceKm)
	assert.True(t, state.Tracking())
}

func TestTracker_ThreePoints(t *testing.T) {
	state := &State{}
	tr := New(state, codec.JSON{}, nil)

	tr.OnMessage(payload(0, 0))
	tr.OnMessage(payload(0, 1))
	tr.OnMessage(payload(1, 1))

	first := geo.DistanceKm(geo.NewCoordinate(0, 0), geo.NewCoordinate(0, 1))
	second := geo.DistanceKm(geo.NewCoordinate(0, 1), geo.NewCoordinate(1, 1))
	assert.True(t, first > 0)
	assert.True(t, second > 0)

	got := tr.State()
	require.NotNil(t, got.LastPosition)
	assert.Equal(t, geo.NewCoordinate(1, 1), *got.LastPosition)
	assert.Equal(t, first+second, got.TotalDistanceKm)
}

func TestTracker_TotalIsSumOfConsecutiveLegs(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	tr := New(nil, codec.JSON{}, nil)

	var points []geo.Coordinate
	for i := 0; i < 200; i++ {
		points = append(points, geo.NewCoordinate(rng.Float64()*180-90, rng.Float64()*360-180))
	}

	want := 0.0
	previousTotal := 0.0
	for i, p := range points {
		tr.OnMessage(payload(p.Latitude, p.Longitude))
		if i > 0 {
			want += geo.DistanceKm(points[i-1], p)
		}

		total := tr.State().TotalDistanceKm
		assert.GreaterOrEqual(t, total, previousTotal)
		previousTotal = total
	}

	assert.InDelta(t, want, tr.State().TotalDistanceKm, 1e-6)
}

func TestTracker_DecodeFailureLeavesStateUnchanged(t *testing.T) {
	bad := [][]byte{
		nil,
		[]byte("not json"),
		[]byte(`{"latitude": 1}`),
		[]byte(`{"latitude": "a", "longitude": 1}`),
		[]byte(`{"lat": 1, "lon": 2}`),
		[]byte(`{"LATITUDE": 1, "Longitude": 2}`),
		[]byte(`{"latitude": 1, "latitude": 5, "longitude": 2}`),
	}

	state := &State{}
	tr := New(state, codec.JSON{}, nil)

	for _, p := range bad {
		tr.OnMessage(p)
		assert.Equal(t, State{}, *state)
	}

	tr.OnMessage(payload(0, 0))
	tr.OnMessage(payload(0, 1))
	before := tr.State()

	for _, p := range bad {
		tr.OnMessage(p)
		assert.Equal(t, before, tr.State())
	}

	snap := tr.Snapshot()
	assert.Equal(t, uint64(2*len(bad)+2), snap.Messages)
	assert.Equal(t, uint64(2*len(bad)), snap.DecodeErrors)
}

func TestTracker_MalformedThenValidIsFirstObservation(t *testing.T) {
	tr := New(nil, codec.JSON{}, nil)

	tr.OnMessage([]byte(`{"latitude": 5, `))
	assert.False(t, tr.State().Tracking())

	tr.OnMessage(payload(5, 5))
	got := tr.State()
	assert.True(t, got.Tracking())
	assert.Equal(t, 0.0, got.TotalDistanceKm)
}

func TestTracker_Journal(t *testing.T) {
	fixed := time.Date(2024, time.March, 3, 10, 0, 0, 0, time.UTC)
	originalNow := now
	now = func() time.Time { return fixed }
	defer func() { now = originalNow }()

	j := &journal{}
	tr := New(nil, codec.JSON{}, j)

	tr.OnMessage(payload(0, 0))
	tr.OnMessage([]byte("garbage"))
	tr.OnMessage(payload(0, 1))
	tr.OnMessage(payload(1, 1))

	require.Len(t, j.legs, 2)

	first := j.legs[0]
	assert.Equal(t, geo.NewCoordinate(0, 0), first.From)
	assert.Equal(t, geo.NewCoordinate(0, 1), first.To)
	assert.Equal(t, first.DistanceKm, first.TotalDistanceKm)
	assert.Equal(t, fixed, first.RecordedAt)

	second := j.legs[1]
	assert.Equal(t, geo.NewCoordinate(0, 1), second.From)
	assert.Equal(t, geo.NewCoordinate(1, 1), second.To)
	assert.Equal(t, tr.State().TotalDistanceKm, second.TotalDistanceKm)
}

func TestTracker_Msgpack(t *testing.T) {
	tr := New(nil, codec.Msgpack{}, nil)

	for _, c := range []geo.Coordinate{{Latitude: 0, Longitude: 0}, {Latitude: 0, Longitude: 1}} {
		p, err := codec.Msgpack{}.Encode(c)
		require.NoError(t, err)
		tr.OnMessage(p)
	}
	tr.OnMessage(payload(3, 3))

	assert.Equal(t, geo.DistanceKm(geo.NewCoordinate(0, 0), geo.NewCoordinate(0, 1)), tr.State().TotalDistanceKm)
	assert.Equal(t, uint64(1), tr.Snapshot().DecodeErrors)
}

func TestTracker_NonFiniteCoordinatesAreIgnored(t *testing.T) {
	tr := New(nil, codec.Msgpack{}, nil)

	send := func(lat, lon float64) {
		p, err := codec.Msgpack{}.Encode(geo.NewCoordinate(lat, lon))
		require.NoError(t, err)
		tr.OnMessage(p)
	}

	send(0, 0)
	send(math.NaN(), 0)
	send(0, 1)
	send(1, 1)
	send(math.Inf(1), 1)
	send(1, math.Inf(-1))

	first := geo.DistanceKm(geo.NewCoordinate(0, 0), geo.NewCoordinate(0, 1))
	second := geo.DistanceKm(geo.NewCoordinate(0, 1), geo.NewCoordinate(1, 1))

	got := tr.State()
	require.NotNil(t, got.LastPosition)
	assert.Equal(t, geo.NewCoordinate(1, 1), *got.LastPosition)
	assert.False(t, math.IsNaN(got.TotalDistanceKm))
	assert.Equal(t, first+second, got.TotalDistanceKm)
	assert.Equal(t, uint64(3), tr.Snapshot().DecodeErrors)
}

func TestTracker_ConcurrentMessages(t *testing.T) {
	tr := New(nil, codec.JSON{}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.OnMessage(payload(1, 1))
		}()
	}
	wg.Wait()

	snap := tr.Snapshot()
	assert.Equal(t, uint64(50), snap.Messages)
	assert.Equal(t, 0.0, snap.TotalDistanceKm)
	assert.True(t, snap.Tracking)
}

func TestTracker_Snapshot(t *testing.T) {
	tr := New(nil, nil, nil)

	snap := tr.Snapshot()
	assert.False(t, snap.Tracking)
	assert.Nil(t, snap.Latitude)
	assert.Nil(t, snap.Longitude)

	tr.OnMessage(payload(12.5, -7.25))
	snap = tr.Snapshot()
	assert.True(t, snap.Tracking)
	require.NotNil(t, snap.Latitude)
	require.NotNil(t, snap.Longitude)
	assert.Equal(t, 12.5, *snap.Latitude)
	assert.Equal(t, -7.25, *snap.Longitude)
}

func TestTracker_StateReturnsCopy(t *testing.T) {
	tr := New(nil, nil, nil)
	tr.OnMessage(payload(1, 2))

	s := tr.State()
	s.LastPosition.Latitude = 99
	s.TotalDistanceKm = 1000

	got := tr.State()
	assert.Equal(t, 1.0, got.LastPosition.Latitude)
	assert.Equal(t, 0.0, got.TotalDistanceKm)
}
