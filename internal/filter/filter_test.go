package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/behonest/leads-cli/pkg/sults"
)

func TestDigits(t *testing.T) {
	assert.Equal(t, "31999990000", Digits("(31) 99999-0000"))
	assert.Equal(t, "5511987654321", Digits("+55 11 98765-4321"))
	assert.Equal(t, "", Digits("sem telefone"))
	assert.Equal(t, "", Digits(""))
}

func TestInvalidPhone(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		want  bool
	}{
		{"empty phone is not invalid", "", false},
		{"normal phone", "(31) 99999-0001", false},
		{"repeated digit", "999999999", true},
		{"repeated digit with separators", "(99) 9999-9999", true},
		{"no digits at all", "abc", true},
		{"single digit", "7", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InvalidPhone(tt.phone))
		})
	}
}

func deal(id int64, name, email, title, phone, origin string) sults.Deal {
	return sults.Deal{
		ID:     id,
		Title:  title,
		Origin: &sults.Named{Name: origin},
		Contacts: []sults.Contact{
			{Name: name, Email: email, Phone: phone},
		},
	}
}

func TestExcludeDeal(t *testing.T) {
	tests := []struct {
		name string
		d    sults.Deal
		want bool
	}{
		{
			"clean deal kept",
			deal(1, "Maria Souza", "maria@example.com", "Franquia BH", "(31) 99999-0001", "Meta Ads"),
			false,
		},
		{
			"blocklisted id",
			deal(7286, "Maria Souza", "maria@example.com", "Franquia BH", "(31) 99999-0001", ""),
			true,
		},
		{
			"test in title",
			deal(2, "Maria", "maria@example.com", "Teste 2024", "(31) 99999-0001", ""),
			true,
		},
		{
			"test in email",
			deal(3, "Maria", "test@example.com", "Franquia", "(31) 99999-0001", ""),
			true,
		},
		{
			"test in contact name",
			deal(4, "Testeiro", "m@example.com", "Franquia", "(31) 99999-0001", ""),
			true,
		},
		{
			"repeated-digit phone",
			deal(5, "Maria", "maria@example.com", "Franquia", "999999999", ""),
			true,
		},
		{
			"test origin exact",
			deal(6, "Maria", "maria@example.com", "Franquia", "(31) 99999-0001", "TESTE"),
			true,
		},
		{
			"duplicate origin contains",
			deal(7, "Maria", "maria@example.com", "Franquia", "(31) 99999-0001", "Lead Duplicado"),
			true,
		},
		{
			"empty phone kept at this stage",
			deal(8, "Maria", "maria@example.com", "Franquia", "", ""),
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExcludeDeal(&tt.d))
		})
	}
}

func TestExcludeLossReason(t *testing.T) {
	assert.True(t, ExcludeLossReason("DUPLICADO"))
	assert.True(t, ExcludeLossReason("teste"))
	assert.True(t, ExcludeLossReason(" Duplicado "))
	assert.False(t, ExcludeLossReason("Sem capital"))
	assert.False(t, ExcludeLossReason(""))
}

func TestNormalizeOrigin(t *testing.T) {
	assert.Equal(t, "Meta Ads", NormalizeOrigin("Facebook"))
	assert.Equal(t, "Google Ads", NormalizeOrigin("Google Ads"))
	assert.Equal(t, "", NormalizeOrigin(""))
}
