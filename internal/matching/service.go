package matching

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var ErrInvalidMapping = errors.New("invalid description mapping")

var contractPattern = regexp.MustCompile(`(?i)\bADV-(\d+)\b`)

// Source records how a contract number was resolved.
type Source string

const (
	SourceNone    Source = ""
	SourcePattern Source = "pattern"
	SourceMapping Source = "mapping"
)

type Match struct {
	ContractNumber string `json:"contract_number"`
	Source         Source `json:"source"`
}

type Mapping struct {
	ID             int64     `json:"id"`
	RawPattern     string    `json:"raw_pattern"`
	ContractNumber string    `json:"contract_number"`
	CreatedAt      time.Time `json:"created_at"`
}

type Repository interface {
	FindMatch(ctx context.Context, rawDescription string) (string, error)
	CreateMapping(ctx context.Context, rawPattern, contractNumber string) error
	ListMappings(ctx context.Context) ([]Mapping, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ContractFromText extracts an ADV-<digits> contract number, normalised to upper case.
func ContractFromText(s string) (string, bool) {
	m := contractPattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}

	return "ADV-" + m[1], true
}

// Suggest resolves a bank description to a contract number, trying the embedded
// contract reference before learned mappings. A zero Match means no resolution.
func (s *Service) Suggest(ctx context.Context, rawDescription string) (Match, error) {
	if contract, ok := ContractFromText(rawDescription); ok {
		return Match{ContractNumber: contract, Source: SourcePattern}, nil
	}

	contract, err := s.repo.FindMatch(ctx, rawDescription)
	if err != nil {
		return Match{}, err
	}

	if contract == "" {
		return Match{}, nil
	}

	return Match{ContractNumber: contract, Source: SourceMapping}, nil
}

// Learn remembers that descriptions containing rawPattern pay off contractNumber.
func (s *Service) Learn(ctx context.Context, rawPattern, contractNumber string) error {
	rawPattern = strings.TrimSpace(rawPattern)
	if len(rawPattern) < 3 {
		return fmt.Errorf("%w: pattern %q is too short", ErrInvalidMapping, rawPattern)
	}

	contract, ok := ContractFromText(contractNumber)
	if !ok || !strings.EqualFold(contract, strings.TrimSpace(contractNumber)) {
		return fmt.Errorf("%w: %q is not a contract number", ErrInvalidMapping, contractNumber)
	}

	return s.repo.CreateMapping(ctx, rawPattern, contract)
}

func (s *Service) Mappings(ctx context.Context) ([]Mapping, error) {
	return s.repo.ListMappings(ctx)
}
