package foam

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c := NewCatalog()
	require.NoError(t, c.Add(&SourceDescriptor{Key: "A", Device: "XGM/OUT", Property: "intensity"}))
	require.NoError(t, c.Add(&SourceDescriptor{Key: "B", Device: "DET/*/OUT", Property: "image", Modules: []int{0, 1, 2, 3}}))
	return c
}

func metaFor(tid int64, device string) map[string]interface{} {
	return map[string]interface{}{"timestamp.tid": tid}
}

func TestCorrelatorWaitsForAllModulesBeforeCompleting(t *testing.T) {
	c := buildTestCatalog(t)
	corr := NewTrainCorrelator(c, 20)

	packetA := RawTrainBundle{
		Values: RawValues{"XGM/OUT": {"intensity": 1.0}},
		Metadata: map[string]map[string]interface{}{"XGM/OUT": metaFor(100, "XGM/OUT")},
	}
	bundle, dropped, err := corr.Correlate(packetA, "train")
	require.NoError(t, err)
	assert.Nil(t, bundle)
	assert.Empty(t, dropped)

	packetBPartial := RawTrainBundle{
		Values: RawValues{
			"DET/0/OUT": {"image": 1},
			"DET/1/OUT": {"image": 1},
			"DET/2/OUT": {"image": 1},
		},
		Metadata: map[string]map[string]interface{}{
			"DET/0/OUT": metaFor(100, "DET/0/OUT"),
			"DET/1/OUT": metaFor(100, "DET/1/OUT"),
			"DET/2/OUT": metaFor(100, "DET/2/OUT"),
		},
	}
	bundle, dropped, err = corr.Correlate(packetBPartial, "train")
	require.NoError(t, err)
	assert.Nil(t, bundle, "must not complete with only 3 of 4 modules present")
	assert.Empty(t, dropped)

	packetBRest := RawTrainBundle{
		Values: RawValues{"DET/3/OUT": {"image": 1}},
		Metadata: map[string]map[string]interface{}{"DET/3/OUT": metaFor(100, "DET/3/OUT")},
	}
	bundle, dropped, err = corr.Correlate(packetBRest, "train")
	require.NoError(t, err)
	require.NotNil(t, bundle, "all 4 modules now present, train should complete")
	assert.Equal(t, int64(100), bundle.TrainID)
	assert.Empty(t, dropped)
}

func TestCorrelatorEvictsAndReportsDropsOnOverflow(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.Add(&SourceDescriptor{Key: "A", Device: "XGM/OUT", Property: "intensity"}))
	require.NoError(t, c.Add(&SourceDescriptor{Key: "C", Device: "MONO/OUT", Property: "energy"}))
	corr := NewTrainCorrelator(c, 3)

	send := func(tid int64, device, property string) (*CorrelatedBundle, []int64) {
		packet := RawTrainBundle{
			Values: RawValues{device: {property: float64(tid)}},
			Metadata: map[string]map[string]interface{}{device: metaFor(tid, device)},
		}
		bundle, dropped, err := corr.Correlate(packet, "train")
		require.NoError(t, err)
		return bundle, dropped
	}

	// 101, 102 and 103 carry only source A: incomplete, all buffered.
	b, d := send(101, "XGM/OUT", "intensity")
	assert.Nil(t, b)
	assert.Empty(t, d)

	b, d = send(102, "XGM/OUT", "intensity")
	assert.Nil(t, b)
	assert.Empty(t, d)

	b, d = send(103, "XGM/OUT", "intensity")
	assert.Nil(t, b)
	assert.Empty(t, d)

	// incomplete 104 overflows the cache of 3: the oldest, 101, is dropped.
	b, d = send(104, "XGM/OUT", "intensity")
	assert.Nil(t, b)
	assert.Equal(t, []int64{101}, d)

	// source C completes 103: it is emitted and the older 102 is dropped.
	b, d = send(103, "MONO/OUT", "energy")
	require.NotNil(t, b)
	assert.Equal(t, int64(103), b.TrainID)
	assert.Equal(t, []int64{102}, d)

	assert.Equal(t, int64(103), corr.Latest())
}

func TestCorrelatorRejectsMultipleTrainIdsInOnePacket(t *testing.T) {
	c := buildTestCatalog(t)
	corr := NewTrainCorrelator(c, 20)

	packet := RawTrainBundle{
		Values: RawValues{"XGM/OUT": {"intensity": 1.0}},
		Metadata: map[string]map[string]interface{}{
			"XGM/OUT": metaFor(100, "XGM/OUT"),
			"DET/0/OUT": metaFor(101, "DET/0/OUT"),
		},
	}
	_, _, err := corr.Correlate(packet, "train")
	require.ErrorIs(t, err, ErrMultipleTrainIds)
}
