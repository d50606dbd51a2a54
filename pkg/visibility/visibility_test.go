package visibility

import (
	"testing"

	"github.com/acrolabs/counsel/pkg/schema"
)

func answers(pairs map[string]schema.Answer) map[string]schema.Answer {
	return pairs
}

func TestVisible_NoCondition(t *testing.T) {
	f := schema.FieldDescriptor{ID: "cash_amount", Label: "현금"}
	if !Visible(f, nil) {
		t.Error("unconditioned field must always be visible")
	}
}

func TestVisible_HousingConditions(t *testing.T) {
	rent := schema.FieldDescriptor{ID: "rent_deposit_amount", Condition: "rent_deposit"}
	owned := schema.FieldDescriptor{ID: "home_value", Condition: "housing_owned"}

	a := answers(map[string]schema.Answer{
		StepHousing: schema.SingleAnswer(schema.KindSingleChoice, "rent_deposit"),
	})
	if !Visible(rent, a) {
		t.Error("rent_deposit field should show for rent_deposit housing")
	}
	if Visible(owned, a) {
		t.Error("housing_owned field should hide for rent_deposit housing")
	}

	a[StepHousing] = schema.SingleAnswer(schema.KindSingleChoice, "owned")
	if Visible(rent, a) {
		t.Error("rent_deposit field should hide for owned housing")
	}
	if !Visible(owned, a) {
		t.Error("housing_owned field should show for owned housing")
	}
}

func TestVisible_AssetConditions(t *testing.T) {
	crypto := schema.FieldDescriptor{ID: "crypto_amount", Condition: "crypto"}
	vehicle := schema.FieldDescriptor{ID: "vehicle_value", Condition: "vehicle"}

	a := answers(map[string]schema.Answer{
		StepAssets: schema.MultiAnswer([]string{"crypto", "securities"}),
	})
	if !Visible(crypto, a) {
		t.Error("crypto field should show when crypto is selected")
	}
	if Visible(vehicle, a) {
		t.Error("vehicle field should hide when vehicle is not selected")
	}
}

// Unanswered referenced steps hide the field rather than erroring.
func TestVisible_FailClosed_Unanswered(t *testing.T) {
	f := schema.FieldDescriptor{ID: "retirement_amount", Condition: "retirement_fund"}
	if Visible(f, nil) {
		t.Error("unanswered condition must fail closed")
	}
	if Visible(f, answers(map[string]schema.Answer{})) {
		t.Error("empty answers must fail closed")
	}
}

// Tags outside the vocabulary hide the field rather than erroring.
func TestVisible_FailClosed_UnknownTag(t *testing.T) {
	f := schema.FieldDescriptor{ID: "yacht_value", Condition: "owns_yacht"}
	a := answers(map[string]schema.Answer{
		StepHousing: schema.SingleAnswer(schema.KindSingleChoice, "owned"),
	})
	if Visible(f, a) {
		t.Error("unknown condition tag must fail closed")
	}
}

func TestVisibleFields_PreservesOrder(t *testing.T) {
	fields := []schema.FieldDescriptor{
		{ID: "rent_deposit_amount", Condition: "rent_deposit"},
		{ID: "crypto_amount", Condition: "crypto"},
		{ID: "cash_amount"},
	}
	a := answers(map[string]schema.Answer{
		StepHousing: schema.SingleAnswer(schema.KindSingleChoice, "rent_deposit"),
		StepAssets:  schema.MultiAnswer([]string{"crypto"}),
	})

	got := VisibleFields(fields, a)
	if len(got) != 3 {
		t.Fatalf("expected 3 visible fields, got %d", len(got))
	}
	for i, want := range []string{"rent_deposit_amount", "crypto_amount", "cash_amount"} {
		if got[i].ID != want {
			t.Errorf("field %d = %s, want %s", i, got[i].ID, want)
		}
	}

	delete(a, StepAssets)
	got = VisibleFields(fields, a)
	if len(got) != 2 {
		t.Fatalf("expected 2 visible fields, got %d", len(got))
	}
	if got[0].ID != "rent_deposit_amount" || got[1].ID != "cash_amount" {
		t.Errorf("unexpected fields: %v", got)
	}
}

func TestGroupStarts(t *testing.T) {
	fields := []schema.FieldDescriptor{
		{ID: "a", Group: "주거"},
		{ID: "b", Group: "주거"},
		{ID: "c", Group: "자산"},
		{ID: "d"},
		{ID: "e", Group: "자산"},
	}
	got := GroupStarts(fields)
	want := []bool{true, false, true, false, false}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("GroupStarts[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
