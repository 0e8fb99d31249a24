package codec

import (
	"testing"
)

type benchRecord struct {
	S1     []float64 `json:"s1"`
	S2     []float64 `json:"s2"`
	Labels []uint32  `json:"labels"`
	S1Name string    `json:"s1_name"`
	S2Name string    `json:"s2_name"`
}

func newBenchRecord() benchRecord {
	r := benchRecord{
		S1:     make([]float64, 2*120*120/64),
		S2:     make([]float64, 10*120*120/64),
		Labels: []uint32{2, 7, 11},
		S1Name: "S1A_IW_GRDH_1SDV_20170613T165043_33UUP_61_39",
		S2Name: "S2A_MSIL2A_20170613T101031_61_39",
	}
	for i := range r.S1 {
		r.S1[i] = float64(i%97) * 0.013
	}
	for i := range r.S2 {
		r.S2[i] = float64(i%89) * 11.7
	}
	return r
}

func benchmarkCodecMarshal(b *testing.B, c Codec, v any) {
	b.Helper()
	b.ReportAllocs()

	warm, err := c.Marshal(v)
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(warm)))

	var sink []byte
	b.ResetTimer()
	for b.Loop() {
		out, err := c.Marshal(v)
		if err != nil {
			b.Fatal(err)
		}
		sink = out
	}
	_ = sink
}

func benchmarkCodecUnmarshal[T any](b *testing.B, c Codec, data []byte) {
	b.Helper()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))

	var v T
	b.ResetTimer()
	for b.Loop() {
		if err := c.Unmarshal(data, &v); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCodec_Marshal_Record(b *testing.B) {
	r := newBenchRecord()
	b.Run("stdlib", func(b *testing.B) { benchmarkCodecMarshal(b, JSON{}, r) })
	b.Run("go-json", func(b *testing.B) { benchmarkCodecMarshal(b, GoJSON{}, r) })
}

func BenchmarkCodec_Unmarshal_Record(b *testing.B) {
	data := MustMarshal(JSON{}, newBenchRecord())
	b.Run("stdlib", func(b *testing.B) { benchmarkCodecUnmarshal[benchRecord](b, JSON{}, data) })
	b.Run("go-json", func(b *testing.B) { benchmarkCodecUnmarshal[benchRecord](b, GoJSON{}, data) })
}
