package genetics

import (
	"testing"

	"pedigree-genetics/internal/domain/breeds"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profile(loci map[string]string, markers map[string]HealthStatus) *GenotypeProfile {
	return &GenotypeProfile{DogID: "x", Breed: "labrador", Loci: loci, HealthMarkers: markers}
}

func sum(m map[string]float64) float64 {
	total := 0.0
	for _, v := range m {
		total += v
	}
	return total
}

func findLocus(t *testing.T, p OffspringPrediction, name string) LocusPrediction {
	t.Helper()
	for _, l := range p.Loci {
		if l.Locus == name {
			return l
		}
	}
	t.Fatalf("locus %s not predicted", name)
	return LocusPrediction{}
}

func findMarker(t *testing.T, p OffspringPrediction, name string) HealthPrediction {
	t.Helper()
	for _, h := range p.HealthMarkers {
		if h.Marker == name {
			return h
		}
	}
	t.Fatalf("marker %s not predicted", name)
	return HealthPrediction{}
}

func TestPredict_DilutionCarrierCross(t *testing.T) {
	pred := NewPredictor(breeds.Default()).PredictOffspring(
		profile(map[string]string{"D": "D/d"}, nil),
		profile(map[string]string{"D": "d/D"}, nil),
		[]string{"D"},
	)

	d := findLocus(t, pred, "D")
	assert.Equal(t, "D/d", d.SireGenotype)
	assert.Equal(t, "D/d", d.DamGenotype)
	assert.Empty(t, cmp.Diff(map[string]float64{"D/D": 25, "D/d": 50, "d/d": 25}, d.Genotypes))
	assert.Empty(t, cmp.Diff(map[string]float64{"Non-dilute": 75, "Dilute": 25}, d.Phenotypes))
	assert.Empty(t, pred.Unpredictable)
	assert.False(t, pred.IsEstimate)
}

func TestPredict_PhenotypesSumTo100(t *testing.T) {
	sire := profile(map[string]string{
		"A": "Ay/at", "B": "B/b", "D": "D/d", "E": "Em/e", "K": "kbr/ky", "M": "M/m", "S": "S/sp", "Z": "z1/z2",
	}, nil)
	dam := profile(map[string]string{
		"A": "aw/a", "B": "b/b", "D": "d/d", "E": "E/e", "K": "KB/ky", "M": "m/m", "S": "sp/sp", "Z": "z2/z3",
	}, nil)

	pred := NewPredictor(nil).PredictOffspring(sire, dam, nil)
	require.Len(t, pred.Loci, 8)

	// orden de presentación: loci conocidos primero
	assert.Equal(t, "A", pred.Loci[0].Locus)
	assert.Equal(t, "Z", pred.Loci[7].Locus)

	for _, l := range pred.Loci {
		assert.InDelta(t, 100, sum(l.Phenotypes), 1e-6, "locus %s", l.Locus)
		assert.InDelta(t, 100, sum(l.Genotypes), 1e-6, "locus %s", l.Locus)
	}
}

func TestPredict_DominanceSeries(t *testing.T) {
	pred := NewPredictor(nil).PredictOffspring(
		profile(map[string]string{"A": "at/Ay", "E": "e/e", "K": "ky/ky"}, nil),
		profile(map[string]string{"A": "a/a", "E": "e/Em", "K": "kbr/KB"}, nil),
		nil,
	)

	a := findLocus(t, pred, "A")
	assert.Equal(t, "Ay/at", a.SireGenotype)
	assert.Empty(t, cmp.Diff(map[string]float64{"Sable/Fawn": 50, "Tan points": 50}, a.Phenotypes))

	e := findLocus(t, pred, "E")
	assert.Empty(t, cmp.Diff(map[string]float64{"Melanistic mask": 50, "Recessive red/yellow": 50}, e.Phenotypes))

	k := findLocus(t, pred, "K")
	assert.Empty(t, cmp.Diff(map[string]float64{"Solid black": 50, "Brindle": 50}, k.Phenotypes))
}

func TestPredict_LowercaseLocusAndAllelesAreNormalized(t *testing.T) {
	pred := NewPredictor(nil).PredictOffspring(
		profile(map[string]string{"a": "ay/AT"}, nil),
		profile(map[string]string{"A": "at/at"}, nil),
		[]string{"a"},
	)
	a := findLocus(t, pred, "A")
	assert.Equal(t, "Ay/at", a.SireGenotype)
	assert.Equal(t, 50.0, a.Genotypes["Ay/at"])
}

func TestPredict_UnknownLocusPhenotypeIsGenotype(t *testing.T) {
	pred := NewPredictor(nil).PredictOffspring(
		profile(map[string]string{"Cu": "C/c"}, nil),
		profile(map[string]string{"Cu": "c/c"}, nil),
		nil,
	)
	cu := findLocus(t, pred, "Cu")
	assert.Empty(t, cmp.Diff(cu.Genotypes, cu.Phenotypes))
	assert.Empty(t, cu.Trait)
}

func TestPredict_DoubleMerleWarning(t *testing.T) {
	pred := NewPredictor(nil).PredictOffspring(
		profile(map[string]string{"M": "M/m"}, nil),
		profile(map[string]string{"M": "M/m"}, nil),
		nil,
	)
	m := findLocus(t, pred, "M")
	assert.Equal(t, 25.0, m.Phenotypes["Double merle"])
	require.Len(t, pred.Warnings, 1)
	assert.Contains(t, pred.Warnings[0], "25% chance of double merle")
}

func TestPredict_CarrierByCarrier(t *testing.T) {
	pred := NewPredictor(breeds.Default()).PredictOffspring(
		profile(nil, map[string]HealthStatus{"PRA": StatusCarrier}),
		profile(nil, map[string]HealthStatus{"PRA": StatusCarrier}),
		nil,
	)

	h := findMarker(t, pred, "PRA")
	assert.True(t, h.BothCarriers)
	assert.Equal(t, 25.0, h.Clear)
	assert.Equal(t, 50.0, h.Carrier)
	assert.Equal(t, 25.0, h.AtRisk)
	assert.False(t, h.Estimated)
	require.Len(t, pred.Warnings, 1)
	assert.Contains(t, pred.Warnings[0], "Progressive Retinal Atrophy")
}

func TestPredict_GenotypeNotationStatuses(t *testing.T) {
	pred := NewPredictor(breeds.Default()).PredictOffspring(
		profile(nil, map[string]HealthStatus{"PRA": "N/x", "DM": "x/x"}),
		profile(nil, map[string]HealthStatus{"PRA": " n/X ", "DM": "N/N"}),
		nil,
	)

	pra := findMarker(t, pred, "PRA")
	assert.True(t, pra.BothCarriers)
	assert.Equal(t, 25.0, pra.AtRisk)
	assert.Equal(t, 50.0, pra.Carrier)

	dm := findMarker(t, pred, "DM")
	assert.Equal(t, 100.0, dm.Carrier)

	assert.Empty(t, pred.Unpredictable)
	require.Len(t, pred.Warnings, 1)
	assert.Contains(t, pred.Warnings[0], "Both parents are carriers of Progressive Retinal Atrophy")
}

func TestPredict_UnknownHealthStatusIsUnpredictable(t *testing.T) {
	pred := NewPredictor(nil).PredictOffspring(
		profile(nil, map[string]HealthStatus{"PRA": "maybe"}),
		profile(nil, map[string]HealthStatus{"PRA": StatusClear}),
		nil,
	)
	assert.Empty(t, pred.HealthMarkers)
	require.Len(t, pred.Unpredictable, 1)
	assert.Equal(t, "PRA", pred.Unpredictable[0].Locus)
	assert.Contains(t, pred.Unpredictable[0].Reason, `invalid sire status "maybe"`)
}

func TestPredict_AtRiskByClear(t *testing.T) {
	pred := NewPredictor(nil).PredictOffspring(
		profile(nil, map[string]HealthStatus{"DM": StatusAtRisk}),
		profile(nil, map[string]HealthStatus{"DM": StatusClear}),
		nil,
	)
	h := findMarker(t, pred, "DM")
	assert.Equal(t, 100.0, h.Carrier)
	assert.Zero(t, h.AtRisk)
	assert.False(t, h.BothCarriers)
	assert.Empty(t, pred.Warnings)
}

func TestPredict_AtRiskByCarrierWarns(t *testing.T) {
	pred := NewPredictor(nil).PredictOffspring(
		profile(nil, map[string]HealthStatus{"DM": StatusAtRisk}),
		profile(nil, map[string]HealthStatus{"DM": StatusCarrier}),
		nil,
	)
	h := findMarker(t, pred, "DM")
	assert.Equal(t, 50.0, h.AtRisk)
	require.Len(t, pred.Warnings, 1)
	assert.Contains(t, pred.Warnings[0], "50% chance of puppies at risk")
}

func TestPredict_MissingLocusIsOmitted(t *testing.T) {
	pred := NewPredictor(nil).PredictOffspring(
		profile(map[string]string{"D": "D/d", "B": "B/b"}, map[string]HealthStatus{"PRA": StatusClear}),
		profile(map[string]string{"D": "d/d"}, nil),
		nil,
	)

	require.Len(t, pred.Loci, 1)
	assert.Equal(t, "D", pred.Loci[0].Locus)
	assert.Empty(t, pred.HealthMarkers)
	assert.Equal(t, []Unpredictable{
		{Locus: "B", Reason: "missing genotype for dam"},
		{Locus: "PRA", Reason: "missing result for dam"},
	}, pred.Unpredictable)
}

func TestPredict_RequestedLocusAbsentEverywhere(t *testing.T) {
	pred := NewPredictor(nil).PredictOffspring(
		profile(map[string]string{"D": "D/d"}, nil),
		profile(map[string]string{"D": "d/d"}, nil),
		[]string{"E"},
	)
	assert.Empty(t, pred.Loci)
	assert.Equal(t, []Unpredictable{{Locus: "E", Reason: "missing genotype for both parents"}}, pred.Unpredictable)
}

func TestPredict_InvalidGenotype(t *testing.T) {
	pred := NewPredictor(nil).PredictOffspring(
		profile(map[string]string{"D": "Dd"}, nil),
		profile(map[string]string{"D": "d/d"}, nil),
		nil,
	)
	assert.Empty(t, pred.Loci)
	require.Len(t, pred.Unpredictable, 1)
	assert.Contains(t, pred.Unpredictable[0].Reason, "invalid sire genotype")
}

func TestPredict_MissingProfileUsesBreedCarrierRates(t *testing.T) {
	dam := profile(map[string]string{"D": "d/d"}, map[string]HealthStatus{"EIC": StatusCarrier})

	pred := NewPredictor(breeds.Default()).Predict(Parents{Dam: dam, SireBreed: "labrador"}, nil)

	// color no se adivina
	assert.Empty(t, pred.Loci)
	assert.Equal(t, []Unpredictable{{Locus: "D", Reason: "no DNA profile on file for sire"}}, pred.Unpredictable)

	// EIC labrador: 30% portadores => gameto x = 0.15; dam carrier => x = 0.5
	h := findMarker(t, pred, "EIC")
	assert.True(t, h.Estimated)
	assert.True(t, pred.IsEstimate)
	assert.InDelta(t, 7.5, h.AtRisk, 1e-9)
	assert.InDelta(t, 100, h.Clear+h.Carrier+h.AtRisk, 1e-6)
	assert.False(t, h.BothCarriers)
	require.Len(t, pred.Warnings, 1)
	assert.Contains(t, pred.Warnings[0], "based on breed carrier frequency")
}

func TestPredict_BothProfilesMissing(t *testing.T) {
	pred := NewPredictor(breeds.Default()).Predict(Parents{SireBreed: "beagle", DamBreed: "beagle"}, nil)

	assert.True(t, pred.IsEstimate)
	assert.Empty(t, pred.Loci)
	markers := make([]string, 0, len(pred.HealthMarkers))
	for _, h := range pred.HealthMarkers {
		markers = append(markers, h.Marker)
		assert.True(t, h.Estimated)
	}
	assert.Equal(t, []string{"IGS", "NCCD", "PKD"}, markers)
}

func TestPredict_MissingProfileWithoutBreedData(t *testing.T) {
	dam := profile(nil, map[string]HealthStatus{"XYZ": StatusCarrier})
	pred := NewPredictor(breeds.Default()).Predict(Parents{Dam: dam, SireBreed: "other"}, nil)

	assert.Empty(t, pred.HealthMarkers)
	require.Len(t, pred.Unpredictable, 1)
	assert.Equal(t, "XYZ", pred.Unpredictable[0].Locus)
}

func TestPredict_RequestedMarkerByName(t *testing.T) {
	pred := NewPredictor(breeds.Default()).PredictOffspring(
		profile(map[string]string{"D": "D/d"}, map[string]HealthStatus{"PRA": StatusCarrier, "DM": StatusClear}),
		profile(map[string]string{"D": "D/d"}, map[string]HealthStatus{"PRA": StatusClear, "DM": StatusClear}),
		[]string{"PRA"},
	)
	assert.Empty(t, pred.Loci)
	require.Len(t, pred.HealthMarkers, 1)
	assert.Equal(t, 50.0, pred.HealthMarkers[0].Carrier)
}

func TestParseHealthStatus(t *testing.T) {
	for raw, want := range map[string]HealthStatus{
		"clear": StatusClear, "N/N": StatusClear,
		"Carrier": StatusCarrier, "N/x": StatusCarrier,
		"at-risk": StatusAtRisk, "at_risk": StatusAtRisk, "affected": StatusAtRisk,
	} {
		got, err := ParseHealthStatus(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseHealthStatus("maybe")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
