package ofx

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/sthwalo/acc-sub003/internal/common"
	"github.com/sthwalo/acc-sub003/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Sample OFX data for testing.
const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>STARBUCKS STORE #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>-125.00
<FITID>2024012001
<NAME>Whole Foods Market
</STMTTRN>
<STMTTRN>
<TRNTYPE>CHECK
<DTPOSTED>20240125120000[0:GMT]
<TRNAMT>-500.00
<FITID>2024012501
<CHECKNUM>1234
<NAME>CHECK #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240126120000[0:GMT]
<TRNAMT>2500.00
<FITID>2024012601
<NAME>PAYMENT
<MEMO>PAYMENT FROM ACME TRADING
</STMTTRN>
<STMTTRN>
<TRNTYPE>SRVCHG
<DTPOSTED>20240131120000[0:GMT]
<TRNAMT>-12.50
<FITID>2024013101
<NAME>MONTHLY SERVICE FEE
</STMTTRN>
<STMTTRN>
<TRNTYPE>OTHER
<DTPOSTED>20240131120000[0:GMT]
<TRNAMT>0.00
<FITID>2024013102
<NAME>BALANCE ENQUIRY
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const sampleCreditCardOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>USD
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240110120000[0:GMT]
<TRNAMT>-45.99
<FITID>CC2024011001
<NAME>AMAZON.COM*RT4Y7HG2
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-15.00
<FITID>CC2024011501
<NAME>NETFLIX.COM
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-500.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestParseFile(t *testing.T) {
	tests := []struct {
		name          string
		ofxData       string
		expectedCount int
		expectedError bool
	}{
		{name: "valid bank statement", ofxData: sampleBankOFX, expectedCount: 5},
		{name: "valid credit card statement", ofxData: sampleCreditCardOFX, expectedCount: 2},
		{name: "invalid OFX data", ofxData: "not valid OFX", expectedError: true},
		{name: "empty OFX", ofxData: "", expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewParser()

			statements, err := parser.ParseFile(context.Background(), strings.NewReader(tt.ofxData))
			if tt.expectedError {
				assert.ErrorIs(t, err, common.ErrParse)
				return
			}
			require.NoError(t, err)
			require.Len(t, statements, 1)
			assert.Len(t, statements[0].Transactions, tt.expectedCount)
		})
	}
}

func TestParseBankTransactions(t *testing.T) {
	statements, err := NewParser().ParseFile(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.Len(t, statements, 1)

	stmt := statements[0]
	assert.Equal(t, "1234567890", stmt.AccountID)
	assert.Equal(t, "01 January 2024 to 31 January 2024", stmt.Period)
	require.NotNil(t, stmt.LedgerBalance)
	assert.Equal(t, "1000", stmt.LedgerBalance.String())

	want := []struct {
		description string
		amount      string
		typ         model.TransactionType
		day         int
	}{
		{description: "STARBUCKS STORE #1234", amount: "25.5", typ: model.TypeDebit, day: 15},
		{description: "Whole Foods Market", amount: "125", typ: model.TypeDebit, day: 20},
		{description: "CHECK #1234", amount: "500", typ: model.TypeDebit, day: 25},
		{description: "PAYMENT FROM ACME TRADING", amount: "2500", typ: model.TypeCredit, day: 26},
		{description: "MONTHLY SERVICE FEE", amount: "12.5", typ: model.TypeServiceFee, day: 31},
	}
	require.Len(t, stmt.Transactions, len(want))
	for i, w := range want {
		txn := stmt.Transactions[i]
		assert.Equal(t, w.description, txn.Description)
		assert.Equal(t, w.amount, txn.Amount.String())
		assert.Equal(t, w.typ, txn.Type)
		assert.Equal(t, time.Date(2024, time.January, w.day, 12, 0, 0, 0, time.UTC), txn.Date)
		assert.Nil(t, txn.Balance)
	}
}

func TestParseCreditCardTransactions(t *testing.T) {
	statements, err := NewParser().ParseFile(context.Background(), strings.NewReader(sampleCreditCardOFX))
	require.NoError(t, err)
	require.Len(t, statements, 1)

	stmt := statements[0]
	assert.Equal(t, "4111111111111111", stmt.AccountID)
	require.NotNil(t, stmt.LedgerBalance)
	assert.Equal(t, "-500", stmt.LedgerBalance.String())

	require.Len(t, stmt.Transactions, 2)
	assert.Equal(t, "AMAZON.COM*RT4Y7HG2", stmt.Transactions[0].Description)
	assert.Equal(t, "45.99", stmt.Transactions[0].Amount.String())
	assert.Equal(t, "NETFLIX.COM", stmt.Transactions[1].Description)
	assert.Equal(t, model.TypeDebit, stmt.Transactions[1].Type)
}

func TestExtractDescription(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		name     string
		input    string
		memo     string
		expected string
	}{
		{name: "remove POS prefix", input: "POS PURCHASE STARBUCKS", expected: "STARBUCKS"},
		{name: "remove DEBIT CARD prefix", input: "DEBIT CARD PURCHASE WHOLE FOODS", expected: "WHOLE FOODS"},
		{name: "keep clean name", input: "NETFLIX.COM", expected: "NETFLIX.COM"},
		{name: "trim whitespace", input: "  AMAZON.COM  ", expected: "AMAZON.COM"},
		{name: "drop card date", input: "01/15 ENGEN SANDTON", expected: "ENGEN SANDTON"},
		{name: "generic name uses memo", input: "PAYMENT", memo: "VODACOM AIRTIME", expected: "VODACOM AIRTIME"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := ofxgo.Transaction{
				Name: ofxgo.String(tt.input),
				Memo: ofxgo.String(tt.memo),
			}
			assert.Equal(t, tt.expected, parser.extractDescription(tx))
		})
	}
}

func TestPreprocessOFX(t *testing.T) {
	parser := NewParser()

	got := parser.preprocessOFX("\n\n<SEVERITY>Info</SEVERITY>\n<BANKACCTFROM\n")
	assert.Equal(t, "<SEVERITY>INFO</SEVERITY>\n<BANKACCTFROM>\n", got)
}
