package merchant

import "testing"

func TestExtract(t *testing.T) {
	tests := []struct {
		name   string
		desc   string
		want   string
		wantOK bool
	}{
		{"upi name before handle", "UPI-ABHINAV ERRAPALLY-ABHINAV.ERRAPALLY-1@00000529566515591", "ABHINAV ERRAPALLY", true},
		{"upi name before phone handle", "UPI-SHAKEEL MOHAMMAD-9652063370@YBL-SBIN000000113060535138", "SHAKEEL MOHAMMAD", true},
		{"upi lowercase", "upi-swiggy-swiggy@icici", "swiggy", true},
		{"reversal takes handle owner", "REV-UPI-50100154236544-SANTOSH.MVHS@OKHDFCBANK-REFUND", "SANTOSH", true},
		{"ach debit", "ACH D- NSECLEARINGLIMITED-3142768919", "NSECLEARINGLIMITED", true},
		{"ach payee", "ACH D- RAZORPAYSOFTWAREPRIV-ADITYABIRLQF", "RAZORPAYSOFTWAREPRIV", true},
		{"billpay payee", "IB BILLPAY DR-TATAPOWER-123456", "TATAPOWER", true},
		{"billpay bank code falls to generic", "IB BILLPAY DR-HDFCCS-457262XXXXXX6844", "BILLPAY", true},
		{"neft first three words", "NEFT CR-IDFB0010204-MAGNATEPOINT TECHNOLOGIES PRIVATE L-VENKATA HANUMA", "MAGNATEPOINT TECHNOLOGIES PRIVATE", true},
		{"card settlement billdk", "BHDFV8G0HT20Z9/BILLDKAMERICANEXPRES", "AMERICANEXPRES", true},
		{"card settlement issuer only", "BHDFU4F0H84OGQ/BILLDKHDFCCARD", "", false},
		{"razorpay", "QEC6ZIL2EXNX1Z/RAZPDSPFINANCEPRIVAT", "FINANCEPRIVAT", true},
		{"atm withdrawal location", "NWD-416021XXXXXX1514-4498WS01-KHAMMAM", "KHAMMAM", true},
		{"imps payee", "IMPS-523319907137-MALLA VASANTHI-KKBK-XXXXXXXX1234", "MALLA VASANTHI", true},
		{"imps bank code", "IMPS-518508833581-UTIB-ABC", "", false},
		{"generic skips card numbers", "POS 416021XXXXXX1514 PZ HDFC CC BILLP", "PZ HDFC", true},
		{"upi fallback", "UPI-9876543210@ybl-x", "", false},
		{"empty", "", "", false},
		{"single token", "CASH", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Extract(tt.desc)
			if ok != tt.wantOK {
				t.Fatalf("Extract(%q) ok = %v, want %v (got %q)", tt.desc, ok, tt.wantOK, got)
			}
			if got != tt.want {
				t.Errorf("Extract(%q) = %q, want %q", tt.desc, got, tt.want)
			}
		})
	}
}
