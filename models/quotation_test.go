package models

import "testing"

func TestParseQuotationType(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    QuotationType
		wantErr bool
	}{
		{"private move", "private_move", PrivateMove, false},
		{"company relocation", "company_relocation", CompanyRelocation, false},
		{"international move", "international_move", InternationalMove, false},
		{"piano transport", "piano_transport", PianoTransport, false},
		{"heavy lifting", "heavy_lifting", HeavyLifting, false},
		{"moving cleaning", "moving_cleaning", MovingCleaning, false},
		{"storage move", "storage_move", StorageMove, false},
		{"unknown type", "boat_move", "", true},
		{"empty string", "", "", true},
		{"sql injection attempt", "bids; DROP TABLE bids", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseQuotationType(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseQuotationType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseQuotationType(%q) = %q, expected %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestQuotationTypeTable(t *testing.T) {
	for _, qt := range AllQuotationTypes() {
		table := qt.Table()
		if table == "" {
			t.Errorf("%s has no backing table", qt)
		}
		if table != string(qt)+"_quotations" {
			t.Errorf("%s maps to %q, expected %q", qt, table, string(qt)+"_quotations")
		}
	}
}

func TestRutEligible(t *testing.T) {
	for _, qt := range AllQuotationTypes() {
		want := qt != CompanyRelocation
		if got := qt.RutEligible(); got != want {
			t.Errorf("%s RutEligible = %v, expected %v", qt, got, want)
		}
	}
}

func TestAllQuotationTypesCoversEveryTable(t *testing.T) {
	all := AllQuotationTypes()
	if len(all) != len(quotationTables) {
		t.Fatalf("AllQuotationTypes has %d entries, expected %d", len(all), len(quotationTables))
	}
	seen := map[QuotationType]bool{}
	for _, qt := range all {
		if seen[qt] {
			t.Errorf("%s listed twice", qt)
		}
		seen[qt] = true
	}
}

func TestNewQuotationTypesRoundTrip(t *testing.T) {
	for _, qt := range AllQuotationTypes() {
		q := NewQuotation(qt)
		if q == nil {
			t.Fatalf("NewQuotation(%s) returned nil", qt)
		}
		if q.Type() != qt {
			t.Errorf("NewQuotation(%s).Type() = %s", qt, q.Type())
		}
		if q.Base() == nil {
			t.Errorf("NewQuotation(%s).Base() returned nil", qt)
		}
		if NewQuotationSlice(qt) == nil {
			t.Errorf("NewQuotationSlice(%s) returned nil", qt)
		}
	}
}
