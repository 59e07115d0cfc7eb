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


package storage

import (
	"fmt"

	"github.com/poiesic/dirtycat/core"
)

// MarshalModel serializes an EncoderModel to bytes.
func MarshalModel(model *core.EncoderModel) []byte {
	buf := make([]byte, core.EncoderModelMUS.Size(*model))
	core.EncoderModelMUS.Marshal(*model, buf)
	return buf
}

// UnmarshalModel deserializes an EncoderModel from bytes.
func UnmarshalModel(data []byte) (*core.EncoderModel, error) {
	model, _, err := core.EncoderModelMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &model, nil
}

// MarshalModelInfo serializes a ModelInfo to bytes.
func MarshalModelInfo(info *core.ModelInfo) []byte {
	buf := make([]byte, core.ModelInfoMUS.Size(*info))
	core.ModelInfoMUS.Marshal(*info, buf)
	return buf
}

// UnmarshalModelInfo deserializes a ModelInfo from bytes.
func UnmarshalModelInfo(data []byte) (*core.ModelInfo, error) {
	info, _, err := core.ModelInfoMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &info, nil
}
