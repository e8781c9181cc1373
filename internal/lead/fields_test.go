package lead

import (
	"reflect"
	"testing"
)

func TestMapFields(t *testing.T) {
	t.Run("spanish labels map to canonical keys", func(t *testing.T) {
		got := MapFields(map[string]string{
			"nombre":  "Juan Pérez",
			"empresa": "TechCorp",
		})

		want := map[string]string{
			"name":    "Juan Pérez",
			"company": "TechCorp",
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("MapFields() = %v, want %v", got, want)
		}
	})

	t.Run("english labels pass through", func(t *testing.T) {
		got := MapFields(map[string]string{
			"name":   "Ana",
			"budget": "$5000",
		})

		if got["name"] != "Ana" {
			t.Errorf("name = %q, want %q", got["name"], "Ana")
		}
		if got["budget"] != "$5000" {
			t.Errorf("budget = %q, want %q", got["budget"], "$5000")
		}
	})

	t.Run("unknown labels dropped silently", func(t *testing.T) {
		got := MapFields(map[string]string{
			"nombre":     "Ana",
			"astrología": "tauro",
			"notes":      "irrelevant",
		})

		if len(got) != 1 {
			t.Errorf("MapFields() kept %d keys, want 1: %v", len(got), got)
		}
	})

	t.Run("empty values dropped", func(t *testing.T) {
		got := MapFields(map[string]string{
			"nombre":  "",
			"empresa": "   ",
			"email":   "x@y.com",
		})

		want := map[string]string{"email": "x@y.com"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("MapFields() = %v, want %v", got, want)
		}
	})

	t.Run("labels are case-insensitive", func(t *testing.T) {
		got := MapFields(map[string]string{"Nombre": "Ana", "EMPRESA": "Acme"})

		if got["name"] != "Ana" || got["company"] != "Acme" {
			t.Errorf("MapFields() = %v, want name/company set", got)
		}
	})

	t.Run("synonyms collapse to the same key", func(t *testing.T) {
		got := MapFields(map[string]string{"correo": "a@b.com"})
		if got["email"] != "a@b.com" {
			t.Errorf("email = %q, want %q", got["email"], "a@b.com")
		}

		got = MapFields(map[string]string{"servicio": "consultoría"})
		if got["product_interest"] != "consultoría" {
			t.Errorf("product_interest = %q, want %q", got["product_interest"], "consultoría")
		}
	})
}

func TestMerge(t *testing.T) {
	t.Run("fills missing fields", func(t *testing.T) {
		var f Fields
		f = f.Merge(map[string]string{"name": "Ana", "company": "Acme"})

		if f.Name != "Ana" {
			t.Errorf("Name = %q, want %q", f.Name, "Ana")
		}
		if f.Company != "Acme" {
			t.Errorf("Company = %q, want %q", f.Company, "Acme")
		}
	})

	t.Run("replaces present values", func(t *testing.T) {
		f := Fields{Budget: "$1000"}
		f = f.Merge(map[string]string{"budget": "$5000"})

		if f.Budget != "$5000" {
			t.Errorf("Budget = %q, want %q", f.Budget, "$5000")
		}
	})

	t.Run("never erases with empty or absent values", func(t *testing.T) {
		f := Fields{Name: "Ana", Email: "ana@acme.com"}
		f = f.Merge(map[string]string{"name": "", "company": "Acme"})

		if f.Name != "Ana" {
			t.Errorf("Name = %q, want %q (empty incoming must not erase)", f.Name, "Ana")
		}
		if f.Email != "ana@acme.com" {
			t.Errorf("Email = %q, want unchanged", f.Email)
		}
		if f.Company != "Acme" {
			t.Errorf("Company = %q, want %q", f.Company, "Acme")
		}
	})

	t.Run("idempotent under repeated application", func(t *testing.T) {
		a := Fields{Name: "Ana", Needs: "automatización"}
		b := map[string]string{"company": "Acme", "needs": "CRM"}

		once := a.Merge(b)
		twice := once.Merge(b)

		if once != twice {
			t.Errorf("merge(merge(a,b),b) = %+v, want %+v", twice, once)
		}
	})
}

func TestFieldsMap(t *testing.T) {
	f := Fields{Name: "Ana", Timeline: "Q3"}
	got := f.Map()

	want := map[string]string{"name": "Ana", "timeline": "Q3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Map() = %v, want %v", got, want)
	}

	if !(Fields{}).Empty() {
		t.Error("zero Fields should be Empty")
	}
	if f.Empty() {
		t.Error("populated Fields should not be Empty")
	}
}

func TestHasContact(t *testing.T) {
	if (Fields{Name: "Ana"}).HasContact() {
		t.Error("a name alone is not contact info")
	}
	if !(Fields{Email: "ana@example.com"}).HasContact() {
		t.Error("email counts as contact info")
	}
	if !(Fields{Phone: "+503 7777 0000"}).HasContact() {
		t.Error("phone counts as contact info")
	}
}
