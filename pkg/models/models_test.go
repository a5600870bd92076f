// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package models

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-9

// mustItem builds an item for entityType at the given level.
func mustItem(t *testing.T, entityType string, level RiskLevel) AnalysisResultItem {
	t.Helper()
	det, err := NewDetectionResult(entityType, 0.85, 0, 5, UnknownTextLength)
	require.NoError(t, err)
	ra, err := NewRiskAssessment(entityType, level)
	require.NoError(t, err)
	item, err := NewAnalysisResultItem(det, ra)
	require.NoError(t, err)
	return item
}

// resultWithMean builds a one-item result whose mean is the given level.
func resultWithMean(t *testing.T, index int, entityType string, level RiskLevel) AnalysisResult {
	t.Helper()
	return NewAnalysisResult(index, []AnalysisResultItem{mustItem(t, entityType, level)})
}

// -----------------------------------------------------------------------------
// RiskLevel
// -----------------------------------------------------------------------------

func TestRiskLevel_OrdinalsIncrease(t *testing.T) {
	levels := RiskLevels()
	require.Len(t, levels, 5)
	for i := 1; i < len(levels); i++ {
		assert.Greater(t, int(levels[i]), int(levels[i-1]))
		assert.True(t, levels[i-1].ExceededBy(levels[i].Score()))
	}
}

func TestRiskLevel_ExceededByIsStrict(t *testing.T) {
	assert.False(t, RiskLevelFour.ExceededBy(4.0))
	assert.True(t, RiskLevelFour.ExceededBy(4.01))
	assert.False(t, RiskLevelFour.ExceededBy(3.5))
}

func TestRiskLevel_Definitions(t *testing.T) {
	tests := []struct {
		level RiskLevel
		want  RiskLevelDefinition
	}{
		{RiskLevelOne, DefinitionNonIdentifiable},
		{RiskLevelTwo, DefinitionMinimallyIdentifiable},
		{RiskLevelThree, DefinitionSemiIdentifiable},
		{RiskLevelFour, DefinitionHighlyIdentifiable},
		{RiskLevelFive, DefinitionFullyIdentifiable},
		{RiskLevel(0), ""},
		{RiskLevel(6), ""},
	}
	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.level.Definition())
			assert.Equal(t, tt.want != "", tt.level.Valid())
		})
	}
}

func TestParseRiskLevel(t *testing.T) {
	level, err := ParseRiskLevel(3)
	require.NoError(t, err)
	assert.Equal(t, RiskLevelThree, level)

	for _, bad := range []int{-1, 0, 6, 42} {
		_, err := ParseRiskLevel(bad)
		assert.ErrorIs(t, err, ErrInvalidRiskLevel, "ordinal %d", bad)
		var target *InvalidRiskLevelError
		require.ErrorAs(t, err, &target)
		assert.Equal(t, bad, target.Ordinal)
	}
}

// -----------------------------------------------------------------------------
// RiskAssessment
// -----------------------------------------------------------------------------

func TestNewRiskAssessment_DefinitionFollowsLevel(t *testing.T) {
	for _, level := range RiskLevels() {
		ra, err := NewRiskAssessment("PHONE_NUMBER", level)
		require.NoError(t, err)
		assert.Equal(t, level.Definition(), ra.RiskLevelDefinition())
		assert.Equal(t, string(level.Definition()), ra.ToDict()["risk_level_definition"])
	}
}

func TestNewRiskAssessment_InvalidLevel(t *testing.T) {
	_, err := NewRiskAssessment("PHONE_NUMBER", RiskLevel(9))
	assert.ErrorIs(t, err, ErrInvalidRiskLevel)
}

func TestRiskAssessment_OptionalCategories(t *testing.T) {
	ra, err := NewRiskAssessment("US_SSN", RiskLevelFive,
		WithClusterMembership(ClusterSecureIdentifiers),
		WithHIPAACategory("Protected Health Information"),
		WithNISTCategory("Directly PII-linkable"),
	)
	require.NoError(t, err)

	hipaa, ok := ra.HIPAACategory()
	assert.True(t, ok)
	assert.Equal(t, "Protected Health Information", hipaa)
	_, ok = ra.DHSCategory()
	assert.False(t, ok)

	dict := ra.ToDict()
	assert.Equal(t, "US_SSN", dict["pii_type_detected"])
	assert.Equal(t, 5, dict["risk_level"])
	assert.Equal(t, ClusterSecureIdentifiers, dict["cluster_membership_type"])
	assert.Equal(t, "Protected Health Information", dict["hipaa_category"])
	assert.Nil(t, dict["dhs_category"])
	assert.Equal(t, "Directly PII-linkable", dict["nist_category"])
	assert.Len(t, dict, 7)
}

func TestRiskAssessmentList_Average(t *testing.T) {
	a, _ := NewRiskAssessment("A", RiskLevelTwo)
	b, _ := NewRiskAssessment("B", RiskLevelFive)
	list := NewRiskAssessmentList([]RiskAssessment{a, b})
	assert.InDelta(t, 3.5, list.AverageRiskScore(), tolerance)
	assert.Len(t, list.RiskAssessments(), 2)

	empty := NewRiskAssessmentList(nil)
	assert.Equal(t, DefaultRiskLevel.Score(), empty.AverageRiskScore())
	assert.NotNil(t, empty.RiskAssessments())

	dict := list.ToDict()
	assert.Contains(t, dict, "risk_assessments")
	assert.Contains(t, dict, "average_risk_score")
}

// -----------------------------------------------------------------------------
// DetectionResult
// -----------------------------------------------------------------------------

func TestNewDetectionResult_Validation(t *testing.T) {
	tests := []struct {
		name       string
		score      float64
		start, end int
		textLength int
		wantErr    error
	}{
		{"valid", 0.5, 0, 10, 10, nil},
		{"empty span", 1, 4, 4, 10, nil},
		{"unknown length", 0, 100, 200, UnknownTextLength, nil},
		{"start after end", 0.5, 5, 4, 10, ErrInvalidOffset},
		{"negative start", 0.5, -1, 4, 10, ErrInvalidOffset},
		{"end past text", 0.5, 0, 11, 10, ErrInvalidOffset},
		{"score above one", 1.01, 0, 1, 10, ErrInvalidScore},
		{"negative score", -0.1, 0, 1, 10, ErrInvalidScore},
		{"nan score", math.NaN(), 0, 1, 10, ErrInvalidScore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			det, err := NewDetectionResult("EMAIL_ADDRESS", tt.score, tt.start, tt.end, tt.textLength)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.GreaterOrEqual(t, det.Start(), 0)
			assert.LessOrEqual(t, det.Start(), det.End())
			assert.GreaterOrEqual(t, det.Score(), 0.0)
			assert.LessOrEqual(t, det.Score(), 1.0)
		})
	}
}

func TestNewDetectionResult_EmptyEntityType(t *testing.T) {
	_, err := NewDetectionResult("", 0.9, 0, 1, 10)
	assert.ErrorIs(t, err, ErrEmptyEntityType)

	_, err = NewRiskAssessment("", RiskLevelTwo)
	assert.ErrorIs(t, err, ErrEmptyEntityType)
}

func TestInvalidOffsetError_Fields(t *testing.T) {
	_, err := NewDetectionResult("URL", 0.9, 3, 20, 12)
	var target *InvalidOffsetError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, "URL", target.EntityType)
	assert.Equal(t, 12, target.TextLength)
	assert.Contains(t, err.Error(), "text_length=12")
}

// -----------------------------------------------------------------------------
// AnalysisResultItem
// -----------------------------------------------------------------------------

func TestNewAnalysisResultItem_Mismatch(t *testing.T) {
	det, _ := NewDetectionResult("EMAIL_ADDRESS", 0.9, 0, 5, 5)
	ra, _ := NewRiskAssessment("PHONE_NUMBER", RiskLevelThree)

	_, err := NewAnalysisResultItem(det, ra)
	assert.ErrorIs(t, err, ErrMismatchedPairing)
	var target *MismatchedPairingError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "EMAIL_ADDRESS", target.DetectionType)
	assert.Equal(t, "PHONE_NUMBER", target.AssessmentType)
}

func TestNewAnalysisResultItem_RejectsZeroValues(t *testing.T) {
	_, err := NewAnalysisResultItem(DetectionResult{}, RiskAssessment{})
	assert.ErrorIs(t, err, ErrInvalidRiskLevel)
	var target *InvalidRiskLevelError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, 0, target.Ordinal)

	ra, err := NewRiskAssessment("URL", RiskLevelTwo)
	require.NoError(t, err)
	_, err = NewAnalysisResultItem(DetectionResult{}, ra)
	assert.ErrorIs(t, err, ErrMismatchedPairing)
}

func TestAnalysisResultItem_EntityTypesMatch(t *testing.T) {
	item := mustItem(t, "PERSON", RiskLevelFour)
	assert.Equal(t, item.Detection().EntityType(), item.RiskAssessment().PIITypeDetected())
}

func TestAnalysisResultItem_FlattenedDict(t *testing.T) {
	det, _ := NewDetectionResult("EMAIL_ADDRESS", 0.75, 3, 19, 40)
	ra, _ := NewRiskAssessment("EMAIL_ADDRESS", RiskLevelFive,
		WithClusterMembership(ClusterContactInformation))
	item, err := NewAnalysisResultItem(det, ra)
	require.NoError(t, err)

	flat := item.ToFlattenedDict()
	want := map[string]any{
		"entity_type":             "EMAIL_ADDRESS",
		"score":                   0.75,
		"start":                   3,
		"end":                     19,
		"pii_type_detected":       "EMAIL_ADDRESS",
		"risk_level":              5,
		"risk_level_definition":   "Fully Identifiable",
		"cluster_membership_type": ClusterContactInformation,
		"hipaa_category":          nil,
		"dhs_category":            nil,
		"nist_category":           nil,
	}
	assert.Equal(t, want, flat)

	nested := item.ToDict()
	assert.Equal(t, det.ToDict(), nested["detection"])
	assert.Equal(t, ra.ToDict(), nested["riskAssessment"])
}

// -----------------------------------------------------------------------------
// AnalysisResult
// -----------------------------------------------------------------------------

func TestAnalysisResult_MeanOfTwoLevels(t *testing.T) {
	result := NewAnalysisResult(0, []AnalysisResultItem{
		mustItem(t, "PHONE_NUMBER", RiskLevelTwo),
		mustItem(t, "PERSON", RiskLevelFour),
	})
	assert.InDelta(t, 3.0, result.MeanRiskScore(), tolerance)
	assert.Equal(t, 2, result.Len())
}

func TestAnalysisResult_EmptyUsesLowestTier(t *testing.T) {
	result := NewAnalysisResult(7, nil)
	assert.Equal(t, RiskLevelOne.Score(), result.MeanRiskScore())
	assert.Equal(t, 7, result.Index())
	assert.NotNil(t, result.Analysis())
	assert.Empty(t, result.DetectedTypes())
}

func TestAnalysisResult_ZeroValueUsesLowestTier(t *testing.T) {
	var result AnalysisResult
	assert.Equal(t, DefaultRiskLevel.Score(), result.MeanRiskScore())
	assert.Equal(t, DefaultRiskLevel.Score(), result.ToDict()["mean_risk_score"])

	set := NewAnalysisResultSet([]AnalysisResult{result})
	assert.Equal(t, []float64{1.0}, set.RiskScores())
	assert.Equal(t, 1.0, set.MeanRiskScore())
}

func TestAnalysisResult_DetectedTypesKeepsOrderAndDuplicates(t *testing.T) {
	result := NewAnalysisResult(0, []AnalysisResultItem{
		mustItem(t, "URL", RiskLevelTwo),
		mustItem(t, "EMAIL_ADDRESS", RiskLevelFive),
		mustItem(t, "URL", RiskLevelTwo),
	})
	assert.Equal(t, []string{"URL", "EMAIL_ADDRESS", "URL"}, result.DetectedTypes())
}

func TestAnalysisResult_OwnsItsItems(t *testing.T) {
	items := []AnalysisResultItem{mustItem(t, "URL", RiskLevelTwo)}
	result := NewAnalysisResult(0, items)

	items[0] = mustItem(t, "PERSON", RiskLevelFive)
	got := result.Analysis()
	got[0] = mustItem(t, "PERSON", RiskLevelFive)

	assert.Equal(t, []string{"URL"}, result.DetectedTypes())
}

func TestAnalysisResult_ToDict(t *testing.T) {
	result := NewAnalysisResult(2, []AnalysisResultItem{
		mustItem(t, "URL", RiskLevelTwo),
		mustItem(t, "PERSON", RiskLevelFour),
	})
	dict := result.ToDict()

	assert.Equal(t, 2, dict["index"])
	assert.Equal(t, result.MeanRiskScore(), dict["mean_risk_score"])
	items, ok := dict["analysis"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, items, 2)
	assert.Equal(t, "URL", items[0]["entity_type"])
	assert.Equal(t, 4, items[1]["risk_level"])
}

// -----------------------------------------------------------------------------
// AnalysisResultSet
// -----------------------------------------------------------------------------

func TestAnalysisResultSet_TwoUnits(t *testing.T) {
	set := NewAnalysisResultSet([]AnalysisResult{
		resultWithMean(t, 0, "PHONE_NUMBER", RiskLevelTwo),
		resultWithMean(t, 1, "PERSON", RiskLevelFour),
	})

	assert.Equal(t, []float64{2, 4}, set.RiskScores())
	assert.InDelta(t, 3.0, set.MeanRiskScore(), tolerance)
	assert.InDelta(t, 1.0, set.RiskScoreVariance(), tolerance)
	assert.InDelta(t, 1.0, set.RiskScoreStandardDeviation(), tolerance)
}

func TestAnalysisResultSet_Empty(t *testing.T) {
	set := NewAnalysisResultSet(nil)

	assert.Equal(t, 1.0, set.MeanRiskScore())
	assert.Equal(t, 0, set.DetectionCount())
	assert.Equal(t, map[string]int{}, set.DetectedPIITypeFrequencies())
	assert.Empty(t, set.DetectedPIITypes())
	assert.Equal(t, 0.0, set.RiskScoreVariance())
	_, ok := set.MostDetectedPIIType()
	assert.False(t, ok)
}

func TestAnalysisResultSet_ZeroValue(t *testing.T) {
	var set AnalysisResultSet
	assert.Equal(t, 1.0, set.MeanRiskScore())
	assert.Equal(t, map[string]int{}, set.DetectedPIITypeFrequencies())
	assert.NotPanics(t, func() { _ = set.ToDict() })
}

func TestAnalysisResultSet_SingleUnitHasZeroVariance(t *testing.T) {
	set := NewAnalysisResultSet([]AnalysisResult{resultWithMean(t, 0, "URL", RiskLevelThree)})
	assert.Equal(t, 0.0, set.RiskScoreVariance())
	assert.Equal(t, 0.0, set.RiskScoreStandardDeviation())
}

func TestAnalysisResultSet_CountsAndFrequencies(t *testing.T) {
	analyses := []AnalysisResult{
		NewAnalysisResult(0, []AnalysisResultItem{
			mustItem(t, "EMAIL_ADDRESS", RiskLevelFive),
			mustItem(t, "URL", RiskLevelTwo),
		}),
		NewAnalysisResult(1, nil),
		NewAnalysisResult(2, []AnalysisResultItem{
			mustItem(t, "URL", RiskLevelTwo),
			mustItem(t, "PERSON", RiskLevelFour),
			mustItem(t, "URL", RiskLevelTwo),
		}),
	}
	set := NewAnalysisResultSet(analyses, WithCollectionName("forum-thread"))

	wantCount := 0
	for _, a := range analyses {
		wantCount += len(a.Analysis())
	}
	assert.Equal(t, wantCount, set.DetectionCount())

	freq := set.DetectedPIITypeFrequencies()
	assert.Equal(t, map[string]int{"EMAIL_ADDRESS": 1, "URL": 3, "PERSON": 1}, freq)
	sum := 0
	for _, n := range freq {
		sum += n
	}
	assert.Equal(t, set.DetectionCount(), sum)

	assert.Equal(t, []string{"EMAIL_ADDRESS", "URL", "PERSON"}, set.DetectedPIITypes())

	most, ok := set.MostDetectedPIIType()
	require.True(t, ok)
	assert.Equal(t, "URL", most.Key)
	least, ok := set.LeastDetectedPIIType()
	require.True(t, ok)
	assert.Equal(t, "EMAIL_ADDRESS", least.Key)

	name, ok := set.CollectionName()
	assert.True(t, ok)
	assert.Equal(t, "forum-thread", name)

	// Empty unit contributes the lowest tier, not zero.
	assert.Equal(t, 1.0, set.RiskScores()[1])
	assert.InDelta(t, math.Sqrt(set.RiskScoreVariance()), set.RiskScoreStandardDeviation(), tolerance)
}

func TestAnalysisResultSet_ToDictPreservesValues(t *testing.T) {
	set := NewAnalysisResultSet([]AnalysisResult{
		resultWithMean(t, 0, "PHONE_NUMBER", RiskLevelTwo),
		resultWithMean(t, 1, "PERSON", RiskLevelFour),
	}, WithCollectionName("batch-1"))
	dict := set.ToDict()

	keys := []string{
		"collection_name", "analyses", "detection_count", "mean_risk_score",
		"risk_scores", "risk_score_standard_deviation", "risk_score_variance",
		"detected_pii_types", "detected_pii_type_frequencies",
	}
	assert.Len(t, dict, len(keys))
	for _, k := range keys {
		assert.Contains(t, dict, k)
	}

	assert.Equal(t, "batch-1", dict["collection_name"])
	assert.Equal(t, set.DetectionCount(), dict["detection_count"])
	assert.Equal(t, set.MeanRiskScore(), dict["mean_risk_score"])
	assert.Equal(t, set.RiskScores(), dict["risk_scores"])
	assert.Equal(t, set.RiskScoreStandardDeviation(), dict["risk_score_standard_deviation"])
	assert.Equal(t, set.RiskScoreVariance(), dict["risk_score_variance"])
	assert.Equal(t, set.DetectedPIITypes(), dict["detected_pii_types"])
	assert.Equal(t, set.DetectedPIITypeFrequencies(), dict["detected_pii_type_frequencies"])
	assert.Len(t, dict["analyses"], 2)

	unnamed := NewAnalysisResultSet(nil).ToDict()
	assert.Nil(t, unnamed["collection_name"])
}

func TestAnalysisResultSet_MarshalJSON(t *testing.T) {
	set := NewAnalysisResultSet([]AnalysisResult{
		resultWithMean(t, 0, "URL", RiskLevelTwo),
	})
	data, err := json.Marshal(set)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Nil(t, decoded["collection_name"])
	assert.Equal(t, float64(1), decoded["detection_count"])
	assert.Equal(t, 2.0, decoded["mean_risk_score"])

	analyses := decoded["analyses"].([]any)
	first := analyses[0].(map[string]any)
	items := first["analysis"].([]any)
	assert.Equal(t, "URL", items[0].(map[string]any)["entity_type"])
}

func TestCombineAnalysisResultSets_MatchesDirect(t *testing.T) {
	levels := []RiskLevel{RiskLevelOne, RiskLevelFive, RiskLevelTwo, RiskLevelFour, RiskLevelThree, RiskLevelFive, RiskLevelTwo}
	types := []string{"URL", "US_SSN", "URL", "PERSON", "LOCATION", "US_SSN", "PHONE_NUMBER"}

	analyses := make([]AnalysisResult, 0, len(levels))
	for i := range levels {
		analyses = append(analyses, resultWithMean(t, i, types[i], levels[i]))
	}
	direct := NewAnalysisResultSet(analyses, WithCollectionName("direct"))

	for _, shard := range []int{1, 2, 3, 7, 10} {
		var parts []AnalysisResultSet
		for start := 0; start < len(analyses); start += shard {
			end := start + shard
			if end > len(analyses) {
				end = len(analyses)
			}
			parts = append(parts, NewAnalysisResultSet(analyses[start:end]))
		}
		combined := CombineAnalysisResultSets(parts, WithCollectionName("direct"))

		assert.Equal(t, direct.DetectionCount(), combined.DetectionCount(), "shard %d", shard)
		assert.Equal(t, direct.RiskScores(), combined.RiskScores(), "shard %d", shard)
		assert.Equal(t, direct.DetectedPIITypes(), combined.DetectedPIITypes(), "shard %d", shard)
		assert.Equal(t, direct.DetectedPIITypeFrequencies(), combined.DetectedPIITypeFrequencies(), "shard %d", shard)
		assert.InDelta(t, direct.MeanRiskScore(), combined.MeanRiskScore(), tolerance, "shard %d", shard)
		assert.InDelta(t, direct.RiskScoreVariance(), combined.RiskScoreVariance(), tolerance, "shard %d", shard)
		assert.Len(t, combined.Analyses(), len(analyses))
	}
}

func TestCombineAnalysisResultSets_Empty(t *testing.T) {
	combined := CombineAnalysisResultSets(nil)
	assert.Equal(t, DefaultCollectionRiskScore, combined.MeanRiskScore())
	assert.Equal(t, 0, combined.DetectionCount())
}

func TestAnalysisResultSet_InstancesDoNotShareContainers(t *testing.T) {
	a := NewAnalysisResultSet(nil)
	b := NewAnalysisResultSet(nil)

	fa := a.DetectedPIITypeFrequencies()
	fa["URL"] = 9
	sa := a.RiskScores()
	sa = append(sa, 5)

	assert.Empty(t, b.DetectedPIITypeFrequencies())
	assert.Empty(t, a.DetectedPIITypeFrequencies())
	assert.Empty(t, b.RiskScores())
	assert.Len(t, sa, 1)
}

// -----------------------------------------------------------------------------
// Benchmarks
// -----------------------------------------------------------------------------

func BenchmarkNewAnalysisResultSet(b *testing.B) {
	det, _ := NewDetectionResult("URL", 0.9, 0, 5, UnknownTextLength)
	ra, _ := NewRiskAssessment("URL", RiskLevelTwo)
	item, _ := NewAnalysisResultItem(det, ra)

	analyses := make([]AnalysisResult, 1000)
	for i := range analyses {
		analyses[i] = NewAnalysisResult(i, []AnalysisResultItem{item, item, item})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		NewAnalysisResultSet(analyses)
	}
}
