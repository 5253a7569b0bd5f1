// Copyright 2024 Quiver Data
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package frame

import (
	"fmt"
	"sort"
	"strings"

	"github.com/quiverdata/quiver/pkg/common/qerr"
	"github.com/quiverdata/quiver/pkg/container/types"
)

// Slot binding resolves requested name→qtype pairs against an
// available name→slot mapping. Callers bind dozens of named slots at
// once, so every missing name and every mismatch is collected into a
// single error rather than failing on the first.

type bindingDiag struct {
	missing    []string
	mismatched []string
}

func (d *bindingDiag) noteMissing(name string, want *types.QType) {
	d.missing = append(d.missing, fmt.Sprintf("%s:%s", name, want.Name()))
}

func (d *bindingDiag) noteMismatch(name string, want, got *types.QType) {
	d.mismatched = append(d.mismatched,
		fmt.Sprintf("%s: expected %s, got %s", name, want.Name(), got.Name()))
}

func (d *bindingDiag) err() error {
	if len(d.missing) == 0 && len(d.mismatched) == 0 {
		return nil
	}
	sort.Strings(d.missing)
	sort.Strings(d.mismatched)
	var parts []string
	if len(d.mismatched) > 0 {
		parts = append(parts, "slot types mismatch: {"+strings.Join(d.mismatched, "; ")+"}")
	}
	if len(d.missing) > 0 {
		parts = append(parts, "missing slots: {"+strings.Join(d.missing, ", ")+"}")
	}
	return qerr.NewPrecondition("%s", strings.Join(parts, "; "))
}

// FindSlotsAndVerifyTypes resolves every requested name to a slot of
// the requested qtype. All missing names and type mismatches are
// reported in one aggregated error; no partial result accompanies an
// error.
func FindSlotsAndVerifyTypes(
	requested map[string]*types.QType, available map[string]TypedSlot,
) (map[string]TypedSlot, error) {
	var diag bindingDiag
	out := make(map[string]TypedSlot, len(requested))
	for name, want := range requested {
		ts, ok := available[name]
		if !ok {
			diag.noteMissing(name, want)
			continue
		}
		if ts.QType() != want {
			diag.noteMismatch(name, want, ts.QType())
			continue
		}
		out[name] = ts
	}
	if err := diag.err(); err != nil {
		return nil, err
	}
	return out, nil
}

// MaybeFindSlotsAndVerifyTypes is FindSlotsAndVerifyTypes with missing
// names permitted: the result contains only the names that resolved,
// but a type mismatch is still an error.
func MaybeFindSlotsAndVerifyTypes(
	requested map[string]*types.QType, available map[string]TypedSlot,
) (map[string]TypedSlot, error) {
	var diag bindingDiag
	out := make(map[string]TypedSlot, len(requested))
	for name, want := range requested {
		ts, ok := available[name]
		if !ok {
			continue
		}
		if ts.QType() != want {
			diag.noteMismatch(name, want, ts.QType())
			continue
		}
		out[name] = ts
	}
	if err := diag.err(); err != nil {
		return nil, err
	}
	return out, nil
}

// VerifySlotTypes checks that the slot mapping carries exactly the
// requested names with the requested types. Extra slots are reported
// as mismatches against a missing request.
func VerifySlotTypes(
	requested map[string]*types.QType, slots map[string]TypedSlot,
) error {
	var diag bindingDiag
	for name, want := range requested {
		ts, ok := slots[name]
		if !ok {
			diag.noteMissing(name, want)
			continue
		}
		if ts.QType() != want {
			diag.noteMismatch(name, want, ts.QType())
		}
	}
	var extras []string
	for name := range slots {
		if _, ok := requested[name]; !ok {
			extras = append(extras, name)
		}
	}
	if len(extras) > 0 {
		sort.Strings(extras)
		if err := diag.err(); err != nil {
			return qerr.NewPrecondition("%v; unexpected slots: {%s}",
				err, strings.Join(extras, ", "))
		}
		return qerr.NewPrecondition("unexpected slots: {%s}", strings.Join(extras, ", "))
	}
	return diag.err()
}
