// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package demographics

import "github.com/pdiddy/litscope/pkg/types"

// bucketKeywords pairs a bucket name with the case-insensitive substrings
// that place a paper in it.
type bucketKeywords struct {
	bucket   string
	keywords []string
}

// dimensionTables is the declarative keyword rule set, one ordered bucket
// list per dimension. Buckets are checked in order and a paper may land
// in several buckets of the same dimension; order never affects which
// buckets match, only the order they are recorded in. Keywords with
// leading or trailing spaces are deliberate word-boundary guards.
var dimensionTables = map[types.Dimension][]bucketKeywords{
	types.DimensionAge: {
		{types.AgeChild, []string{"child", "pediatric", "adolescent", "infant", "youth", "under 18"}},
		{types.AgeAdult, []string{"adult", "young adult", "middle-aged", "18-65", "working age"}},
		{types.AgeSenior, []string{"elderly", "older adult", "65-75", "senior", "aged 65"}},
		{types.AgeOldest, []string{"very old", "over 75", "aged 75", "oldest old", "over 80"}},
	},
	types.DimensionGender: {
		{types.GenderMale, []string{"male", "men ", " men", "man ", "gentleman"}},
		{types.GenderFemale, []string{"female", "women", "woman", "lady", "ladies"}},
	},
	types.DimensionPregnancy: {
		{types.PregnancyPregnant, []string{"pregnan", "gestat", "maternal", "expectant"}},
	},
	types.DimensionGeography: {
		{types.RegionNorthAmerica, []string{"united states", "usa", "u.s.", "canada", "mexico", "american"}},
		{types.RegionEurope, []string{"europe", "uk", "united kingdom", "germany", "france", "italy", "spain", "european"}},
		{types.RegionAsia, []string{"asia", "china", "japan", "india", "korea", "asian", "chinese", "japanese"}},
		{types.RegionOther, []string{"africa", "australia", "south america", "brazil", "middle east"}},
	},
}
