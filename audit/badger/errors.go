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


package badger

import "errors"

var (
	// ErrMissingRunID is returned when a record without a run ID is written.
	ErrMissingRunID = errors.New("audit record has no run ID")

	// ErrInvalidLimit is returned when Recent is called with a non-positive limit.
	ErrInvalidLimit = errors.New("limit must be positive")

	// ErrInvalidRange is returned when Between is called with an empty or
	// inverted time window.
	ErrInvalidRange = errors.New("invalid time range")
)
