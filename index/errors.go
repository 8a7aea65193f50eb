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


package index

import "errors"

var (
	// ErrEmptyVector is returned when a search is attempted with no query embedding.
	ErrEmptyVector = errors.New("query vector required")

	// ErrInvalidTopK is returned when k is less than 1.
	ErrInvalidTopK = errors.New("top-k must be at least 1")

	// ErrEmptyPassage is returned when an indexed passage has no text or embedding.
	ErrEmptyPassage = errors.New("passage text and embedding required")
)
