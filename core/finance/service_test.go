package finance

import "testing"

func TestPaymentStatus(t *testing.T) {
	tests := []struct {
		amount, paid float64
		want         string
	}{
		{amount: 500, paid: 0, want: StatusUnpaid},
		{amount: 500, paid: 0.01, want: StatusPartial},
		{amount: 500, paid: 499.99, want: StatusPartial},
		{amount: 500, paid: 500, want: StatusPaid},
		{amount: 500, paid: 650, want: StatusPaid},
	}
	for _, tt := range tests {
		if got := PaymentStatus(tt.amount, tt.paid); got != tt.want {
			t.Errorf("PaymentStatus(%v, %v) = %s, want %s", tt.amount, tt.paid, got, tt.want)
		}
	}
}
