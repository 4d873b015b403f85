// Package ofx turns OFX/QFX bank and credit card statements into candidate
// ledger transactions.
package ofx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/Veraticus/budget-buddy/internal/model"
	"github.com/aclindsa/ofxgo"
)

// ErrNoTransactions is returned when no statement in a batch of files
// yielded a transaction.
var ErrNoTransactions = errors.New("no transactions found")

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Statement transaction types that carry a fixed category.
var typeCategories = map[any]model.Category{
	ofxgo.TrnTypeInt:       model.CategoryIncome,
	ofxgo.TrnTypeDiv:       model.CategoryIncome,
	ofxgo.TrnTypeDirectDep: model.CategoryIncome,
	ofxgo.TrnTypeFee:       model.CategoryOther,
	ofxgo.TrnTypeSrvChg:    model.CategoryOther,
	ofxgo.TrnTypeATM:       model.CategoryOther,
}

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be upper case
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// SGML files sometimes drop the closing bracket of a bare opening tag
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

func (p *Parser) parse(reader io.Reader) (*ofxgo.Response, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}
	return resp, nil
}

// ParseFile parses an OFX/QFX file into candidate transactions with fresh IDs.
//
// The statement sign decides the type: negative amounts are expenses. Dates
// are written as YYYY-MM-DD. The category comes from the statement
// transaction type where one applies, otherwise Income for credits and Other
// for debits.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]model.Transaction, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	var transactions []model.Transaction
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			transactions = append(transactions, p.convertList(stmt.BankTranList)...)
		}
	}

	for _, msg := range resp.CreditCard {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			transactions = append(transactions, p.convertList(stmt.BankTranList)...)
		}
	}

	slog.Debug("Parsed OFX file",
		"total_transactions", len(transactions),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return transactions, nil
}

func (p *Parser) convertList(list *ofxgo.TransactionList) []model.Transaction {
	if list == nil {
		return nil
	}

	transactions := make([]model.Transaction, 0, len(list.Transactions))
	for _, ofxTx := range list.Transactions {
		txn, ok := p.convertTransaction(ofxTx)
		if !ok {
			slog.Warn("Skipping OFX transaction with unusable amount", "fitid", string(ofxTx.FiTID))
			continue
		}
		transactions = append(transactions, txn)
	}
	return transactions
}

// convertTransaction converts an OFX transaction to our model.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction) (model.Transaction, bool) {
	signed, _ := ofxTx.TrnAmt.Float64()
	if math.IsNaN(signed) || math.IsInf(signed, 0) {
		return model.Transaction{}, false
	}

	txnType := model.ResolveType("", signed)

	category, ok := typeCategories[ofxTx.TrnType]
	if !ok {
		category = model.CategoryOther
		if txnType == model.TypeIncome {
			category = model.CategoryIncome
		}
	}

	description := p.extractMerchantName(ofxTx)
	if description == "" && ofxTx.CheckNum != "" {
		description = fmt.Sprintf("Check #%s", ofxTx.CheckNum)
	}
	if description == "" {
		description = ofxTx.TrnType.String()
	}

	return model.Transaction{
		ID:          model.NewID(),
		Date:        ofxTx.DtPosted.Format("2006-01-02"),
		Amount:      math.Abs(signed),
		Description: description,
		Category:    category,
		Type:        txnType,
	}, true
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func (p *Parser) extractMerchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := string(tx.Name)

	// MEMO sometimes has better merchant info than a generic NAME
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}

	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}

	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Leading "MM/DD " from card processors
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

func isGenericDescription(name string) bool {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}

// GetAccounts extracts unique account IDs from the OFX file, sorted.
func (p *Parser) GetAccounts(_ context.Context, reader io.Reader) ([]string, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	accountMap := make(map[string]bool)

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankAcctFrom.AcctID != "" {
			accountMap[string(stmt.BankAcctFrom.AcctID)] = true
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.CCAcctFrom.AcctID != "" {
			accountMap[string(stmt.CCAcctFrom.AcctID)] = true
		}
	}

	accounts := make([]string, 0, len(accountMap))
	for acct := range accountMap {
		accounts = append(accounts, acct)
	}
	sort.Strings(accounts)

	return accounts, nil
}
