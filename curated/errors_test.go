// This file is part of pp5021sim.
//
// pp5021sim is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// pp5021sim is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with pp5021sim.  If not, see <https://www.gnu.org/licenses/>.

package curated_test

import (
	"fmt"
	"testing"

	"pp5021sim/curated"
)

const testError = "test error: %s"
const testErrorB = "test error B: %s"

func TestDuplicateErrors(t *testing.T) {
	e := curated.Errorf(testError, "foo")
	if e.Error() != "test error: foo" {
		t.Fatalf("Error() = %q, want %q", e.Error(), "test error: foo")
	}

	// packing errors of the same type next to each other causes
	// one of them to be dropped
	f := curated.Errorf(testError, e)
	if f.Error() != "test error: foo" {
		t.Fatalf("Error() = %q, want %q", f.Error(), "test error: foo")
	}
}

func TestIs(t *testing.T) {
	e := curated.Errorf(testError, "foo")
	if !curated.Is(e, testError) {
		t.Fatalf("Is(e, testError) = false, want true")
	}

	// Has() should fail because we haven't included testErrorB anywhere in the error
	if curated.Has(e, testErrorB) {
		t.Fatalf("Has(e, testErrorB) = true, want false")
	}

	// packing errors of the same type next to each other causes
	// one of them to be dropped
	f := curated.Errorf(testErrorB, e)
	if curated.Is(f, testError) {
		t.Fatalf("Is(f, testError) = true, want false")
	}
	if !curated.Is(f, testErrorB) {
		t.Fatalf("Is(f, testErrorB) = false, want true")
	}
	if !curated.Has(f, testError) {
		t.Fatalf("Has(f, testError) = false, want true")
	}
	if !curated.Has(f, testErrorB) {
		t.Fatalf("Has(f, testErrorB) = false, want true")
	}

	// IsAny should return true for these errors also
	if !curated.IsAny(e) {
		t.Fatalf("IsAny(e) = false, want true")
	}
	if !curated.IsAny(f) {
		t.Fatalf("IsAny(f) = false, want true")
	}
}

func TestPlainErrors(t *testing.T) {
	// test plain errors that haven't been formatted with our errors package
	e := fmt.Errorf("plain test error")
	if curated.IsAny(e) {
		t.Fatalf("IsAny(e) = true, want false for a plain error")
	}

	const testError = "test error: %s"
	if curated.Has(e, testError) {
		t.Fatalf("Has(e, testError) = true, want false for a plain error")
	}
}

func TestWrapping(t *testing.T) {
	a := 10
	e := curated.Errorf("error: value = %d", a)
	f := curated.Errorf("fatal: %v", e)

	if !curated.Has(f, "error: value = %d") {
		t.Fatalf("Has(f, inner pattern) = false, want true")
	}
	if curated.Is(f, "error: value = %d") {
		t.Fatalf("Is(f, inner pattern) = true, want false (Is only matches the outermost pattern)")
	}
	if !curated.Has(f, "fatal: %v") {
		t.Fatalf("Has(f, outer pattern) = false, want true")
	}
	if !curated.Is(f, "fatal: %v") {
		t.Fatalf("Is(f, outer pattern) = false, want true")
	}

	if got, want := f.Error(), "fatal: error: value = 10"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}
