// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"errors"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the persisted model types. The serializer set is small
// and stable, so it is maintained by hand rather than generated.
var (
	IDMUS           = idMUS{}
	MergeMUS        = mergeMUS{}
	EncoderModelMUS = encoderModelMUS{}
	ModelInfoMUS    = modelInfoMUS{}
)

var errNegativeLength = errors.New("negative length")

type idMUS struct{}

func (idMUS) Marshal(v ID, bs []byte) int { return varint.Uint64.Marshal(uint64(v), bs) }

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	u, n, err := varint.Uint64.Unmarshal(bs)
	return ID(u), n, err
}

func (idMUS) Size(v ID) int { return varint.Uint64.Size(uint64(v)) }

// Timestamps are stored as Unix microseconds.
func marshalTime(v time.Time, bs []byte) int {
	return varint.Int64.Marshal(v.UnixMicro(), bs)
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	micro, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(micro).UTC(), n, nil
}

func sizeTime(v time.Time) int { return varint.Int64.Size(v.UnixMicro()) }

func marshalStrings(v []string, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, s := range v {
		n += ord.String.Marshal(s, bs[n:])
	}
	return n
}

func unmarshalStrings(bs []byte) (v []string, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length < 0 {
		return nil, n, errNegativeLength
	}
	if length == 0 {
		return nil, n, nil
	}
	v = make([]string, length)
	for i := range v {
		var n1 int
		v[i], n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
	}
	return v, n, nil
}

func sizeStrings(v []string) (size int) {
	size = varint.Int.Size(len(v))
	for _, s := range v {
		size += ord.String.Size(s)
	}
	return size
}

func marshalInts(v []int, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, x := range v {
		n += varint.Int.Marshal(x, bs[n:])
	}
	return n
}

func unmarshalInts(bs []byte) (v []int, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length < 0 {
		return nil, n, errNegativeLength
	}
	if length == 0 {
		return nil, n, nil
	}
	v = make([]int, length)
	for i := range v {
		var n1 int
		v[i], n1, err = varint.Int.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
	}
	return v, n, nil
}

func sizeInts(v []int) (size int) {
	size = varint.Int.Size(len(v))
	for _, x := range v {
		size += varint.Int.Size(x)
	}
	return size
}

func marshalFloats(v []float64, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, x := range v {
		n += raw.Float64.Marshal(x, bs[n:])
	}
	return n
}

func unmarshalFloats(bs []byte) (v []float64, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length < 0 {
		return nil, n, errNegativeLength
	}
	if length == 0 {
		return nil, n, nil
	}
	v = make([]float64, length)
	for i := range v {
		var n1 int
		v[i], n1, err = raw.Float64.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
	}
	return v, n, nil
}

func sizeFloats(v []float64) (size int) {
	size = varint.Int.Size(len(v))
	size += len(v) * raw.Float64.Size(0)
	return size
}

func marshalMatrix(v [][]float64, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, row := range v {
		n += marshalFloats(row, bs[n:])
	}
	return n
}

func unmarshalMatrix(bs []byte) (v [][]float64, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length < 0 {
		return nil, n, errNegativeLength
	}
	if length == 0 {
		return nil, n, nil
	}
	v = make([][]float64, length)
	for i := range v {
		var n1 int
		v[i], n1, err = unmarshalFloats(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
	}
	return v, n, nil
}

func sizeMatrix(v [][]float64) (size int) {
	size = varint.Int.Size(len(v))
	for _, row := range v {
		size += sizeFloats(row)
	}
	return size
}

type mergeMUS struct{}

func (mergeMUS) Marshal(v Merge, bs []byte) (n int) {
	n = varint.Int.Marshal(v.Left, bs)
	n += varint.Int.Marshal(v.Right, bs[n:])
	n += raw.Float64.Marshal(v.Distance, bs[n:])
	n += varint.Int.Marshal(v.Size, bs[n:])
	return n
}

func (mergeMUS) Unmarshal(bs []byte) (v Merge, n int, err error) {
	var n1 int
	v.Left, n, err = varint.Int.Unmarshal(bs)
	if err != nil {
		return v, n, err
	}
	v.Right, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Distance, n1, err = raw.Float64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Size, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	return v, n, err
}

func (mergeMUS) Size(v Merge) int {
	return varint.Int.Size(v.Left) + varint.Int.Size(v.Right) +
		raw.Float64.Size(v.Distance) + varint.Int.Size(v.Size)
}

type encoderModelMUS struct{}

func (s encoderModelMUS) Marshal(v EncoderModel, bs []byte) (n int) {
	n = ord.String.Marshal(v.Name, bs)
	n += ord.String.Marshal(string(v.Kind), bs[n:])
	n += ord.String.Marshal(string(v.Source), bs[n:])
	n += marshalTime(v.CreatedAt, bs[n:])
	n += marshalTime(v.UpdatedAt, bs[n:])
	n += varint.Int.Marshal(v.NGramMin, bs[n:])
	n += varint.Int.Marshal(v.NGramMax, bs[n:])
	n += ord.Bool.Marshal(v.Lowercase, bs[n:])
	n += ord.String.Marshal(string(v.Metric), bs[n:])
	n += ord.String.Marshal(string(v.Linkage), bs[n:])
	n += ord.String.Marshal(string(v.Criterion), bs[n:])
	n += raw.Float64.Marshal(v.Threshold, bs[n:])
	n += ord.String.Marshal(string(v.UnknownPolicy), bs[n:])
	n += marshalInts(v.Clusters, bs[n:])
	n += varint.Int.Marshal(len(v.Merges), bs[n:])
	for _, m := range v.Merges {
		n += MergeMUS.Marshal(m, bs[n:])
	}
	n += varint.Int.Marshal(v.Components, bs[n:])
	n += marshalMatrix(v.Basis, bs[n:])
	n += marshalFloats(v.Singular, bs[n:])
	n += marshalStrings(v.Vocabulary, bs[n:])
	n += marshalStrings(v.Categories, bs[n:])
	n += marshalMatrix(v.Dense, bs[n:])
	return n
}

func (s encoderModelMUS) Unmarshal(bs []byte) (v EncoderModel, n int, err error) {
	var n1 int
	v.Name, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return v, n, err
	}
	var str string
	str, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Kind = ModelKind(str)
	str, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Source = VectorSource(str)
	v.CreatedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.UpdatedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.NGramMin, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.NGramMax, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Lowercase, n1, err = ord.Bool.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	str, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Metric = Metric(str)
	str, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Linkage = Linkage(str)
	str, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Criterion = Criterion(str)
	v.Threshold, n1, err = raw.Float64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	str, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.UnknownPolicy = UnknownPolicy(str)
	v.Clusters, n1, err = unmarshalInts(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	var mergeCount int
	mergeCount, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	if mergeCount < 0 {
		return v, n, errNegativeLength
	}
	if mergeCount > 0 {
		v.Merges = make([]Merge, mergeCount)
		for i := range v.Merges {
			v.Merges[i], n1, err = MergeMUS.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return v, n, err
			}
		}
	}
	v.Components, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Basis, n1, err = unmarshalMatrix(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Singular, n1, err = unmarshalFloats(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Vocabulary, n1, err = unmarshalStrings(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Categories, n1, err = unmarshalStrings(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Dense, n1, err = unmarshalMatrix(bs[n:])
	n += n1
	return v, n, err
}

func (s encoderModelMUS) Size(v EncoderModel) (size int) {
	size = ord.String.Size(v.Name)
	size += ord.String.Size(string(v.Kind))
	size += ord.String.Size(string(v.Source))
	size += sizeTime(v.CreatedAt)
	size += sizeTime(v.UpdatedAt)
	size += varint.Int.Size(v.NGramMin)
	size += varint.Int.Size(v.NGramMax)
	size += ord.Bool.Size(v.Lowercase)
	size += ord.String.Size(string(v.Metric))
	size += ord.String.Size(string(v.Linkage))
	size += ord.String.Size(string(v.Criterion))
	size += raw.Float64.Size(v.Threshold)
	size += ord.String.Size(string(v.UnknownPolicy))
	size += sizeInts(v.Clusters)
	size += varint.Int.Size(len(v.Merges))
	for _, m := range v.Merges {
		size += MergeMUS.Size(m)
	}
	size += varint.Int.Size(v.Components)
	size += sizeMatrix(v.Basis)
	size += sizeFloats(v.Singular)
	size += sizeStrings(v.Vocabulary)
	size += sizeStrings(v.Categories)
	size += sizeMatrix(v.Dense)
	return size
}

type modelInfoMUS struct{}

func (modelInfoMUS) Marshal(v ModelInfo, bs []byte) (n int) {
	n = ord.String.Marshal(v.Name, bs)
	n += ord.String.Marshal(string(v.Kind), bs[n:])
	n += ord.String.Marshal(string(v.Source), bs[n:])
	n += varint.Int.Marshal(v.Categories, bs[n:])
	n += marshalTime(v.CreatedAt, bs[n:])
	n += marshalTime(v.UpdatedAt, bs[n:])
	return n
}

func (modelInfoMUS) Unmarshal(bs []byte) (v ModelInfo, n int, err error) {
	var n1 int
	v.Name, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return v, n, err
	}
	var str string
	str, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Kind = ModelKind(str)
	str, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Source = VectorSource(str)
	v.Categories, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.CreatedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.UpdatedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	return v, n, err
}

func (modelInfoMUS) Size(v ModelInfo) int {
	return ord.String.Size(v.Name) + ord.String.Size(string(v.Kind)) +
		ord.String.Size(string(v.Source)) + varint.Int.Size(v.Categories) +
		sizeTime(v.CreatedAt) + sizeTime(v.UpdatedAt)
}
