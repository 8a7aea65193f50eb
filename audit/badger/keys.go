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

import (
	"bytes"
	"encoding/binary"
	"time"

	"github.com/poiesic/medgate/core"
)

// Key prefix for audit records
const recordKeyPrefix = "audrec"

// makeRecordKey generates a composite key for an audit record.
// Format: prefix:timestamp:runHash
func makeRecordKey(timestamp time.Time, runHash core.ID) []byte {
	prefix := recordKeyPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for timestamp + 8 bytes for run hash
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(runHash))
	return buf
}

// makePartialRecordKey generates a partial key for time range queries.
// Format: prefix:timestamp
func makePartialRecordKey(timestamp time.Time) []byte {
	prefix := recordKeyPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 // 8 bytes for timestamp
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	return buf
}

// recordSeekEnd returns a key past every possible record key, used as the
// starting position for reverse iteration.
func recordSeekEnd() []byte {
	key := makePartialRecordKey(time.Time{})
	// Fill the timestamp bytes with 0xFF to sort after any real timestamp.
	for i := len(recordKeyPrefix) + 1; i < len(key); i++ {
		key[i] = 0xFF
	}
	return append(key, 0xFF)
}

// keyAtOrAfter reports whether key sorts at or after boundary.
func keyAtOrAfter(key, boundary []byte) bool {
	return bytes.Compare(key, boundary) >= 0
}
