package dataset

import (
	"fmt"
	"strings"
)

// Band statistics of the BigEarthNet archive. S2 bands are ordered
// B02 B03 B04 B08 (10 m), B05 B06 B07 B8A B11 B12 (20 m), B01 B09 (60 m);
// S1 polarizations are VH then VV.
var (
	BigEarthNetS2 = Stats{
		Mean: []float64{
			429.9430203, 614.21682446, 590.23569706, 2218.94553375,
			950.68368468, 1792.46290469, 2075.46795189, 2266.46036911, 1594.42694882, 1009.32729131,
			340.76769064, 2246.0605464,
		},
		Std: []float64{
			572.41639287, 582.87945694, 675.88746967, 1365.45589904,
			729.89827633, 1096.01480586, 1273.45393088, 1356.13789355, 1079.19066363, 818.86747235,
			554.81258967, 1302.3292881,
		},
	}

	SerbiaS2 = Stats{
		Mean: []float64{
			458.93423, 676.8278, 665.719, 2590.4482,
			1065.233, 2068.3826, 2435.3057, 2647.92, 2010.1838, 1318.5911,
			341.05457, 2630.7898,
		},
		Std: []float64{
			315.86624, 305.07462, 302.11145, 310.93375,
			288.43314, 287.29364, 299.83383, 295.51282, 211.81876, 193.92213,
			267.79263, 292.94092,
		},
	}

	SerbiaS1 = Stats{
		Mean: []float64{-15.827944, -9.317011},
		Std:  []float64{0.782826, 1.8147297},
	}
)

// Preset returns the S1 and S2 statistics registered under name
// ("bigearthnet" or "serbia"). No separate S1 statistics exist for the full
// archive, so both presets use the Serbia S1 values.
func Preset(name string) (s1, s2 Stats, err error) {
	switch strings.ToLower(name) {
	case "", "bigearthnet":
		return SerbiaS1, BigEarthNetS2, nil
	case "serbia":
		return SerbiaS1, SerbiaS2, nil
	default:
		return Stats{}, Stats{}, fmt.Errorf("dataset: unknown stats preset %q", name)
	}
}
