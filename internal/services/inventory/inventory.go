// Package inventory manages the summit question bank: uniformly random
// draws without replacement, package assembly, and the full-game reset.
package inventory

import (
	"fmt"
	"sort"

	"github.com/datkingvn/pvoil-sub000/internal/common/gameerr"
	"github.com/datkingvn/pvoil-sub000/internal/models"
	"github.com/datkingvn/pvoil-sub000/internal/random"
	"github.com/datkingvn/pvoil-sub000/internal/repositories/document"
)

// Compositions lists the question values of each package, in play order
var Compositions = map[models.PackageType][]int{
	models.Package40: {10, 10, 20},
	models.Package60: {10, 20, 30},
	models.Package80: {20, 30, 30},
}

// DrawInput describes one draw from the bank
type DrawInput struct {
	PointValue int
	Count      int
	Package    models.PackageType
	TeamID     string
}

// BankKey is the document key of a show's question bank
func BankKey(showID string) string {
	return document.ShowKey(showID, "bank")
}

// Load reads the bank inside a transaction; a missing document is an empty bank
func Load(tx document.Tx, showID string) (*models.QuestionBank, error) {
	bank := &models.QuestionBank{Items: []*models.QuestionBankItem{}}
	if _, err := tx.Load(BankKey(showID), bank); err != nil {
		return nil, err
	}
	if bank.Items == nil {
		bank.Items = []*models.QuestionBankItem{}
	}
	return bank, nil
}

// Save queues the bank write
func Save(tx document.Tx, showID string, bank *models.QuestionBank) error {
	return tx.Store(BankKey(showID), bank)
}

// Available counts unused items per point value
func Available(bank *models.QuestionBank) map[int]int {
	out := map[int]int{}
	for _, it := range bank.Items {
		if !it.IsUsed {
			out[it.PointValue]++
		}
	}
	return out
}

// Draw picks Count unused items of PointValue uniformly at random, marks
// them used and returns copies. If fewer than Count remain nothing is marked.
func Draw(bank *models.QuestionBank, picker random.Picker, in DrawInput) ([]models.Question, error) {
	if in.Count <= 0 {
		return nil, fmt.Errorf("%w: count must be positive", gameerr.ErrInvalidInput)
	}

	candidates := make([]*models.QuestionBankItem, 0)
	for _, it := range bank.Items {
		if !it.IsUsed && it.PointValue == in.PointValue {
			candidates = append(candidates, it)
		}
	}

	if len(candidates) < in.Count {
		return nil, fmt.Errorf("%w: need %d of %d points, %d left",
			gameerr.ErrInsufficientInventory, in.Count, in.PointValue, len(candidates))
	}

	picked := picker.Sample(len(candidates), in.Count)
	if len(picked) != in.Count {
		return nil, fmt.Errorf("picker returned %d of %d items", len(picked), in.Count)
	}

	seen := make(map[int]bool, len(picked))
	for _, i := range picked {
		if i < 0 || i >= len(candidates) || seen[i] {
			return nil, fmt.Errorf("picker returned invalid index %d", i)
		}
		seen[i] = true
	}

	pkg := in.Package
	out := make([]models.Question, 0, in.Count)
	for _, i := range picked {
		it := candidates[i]
		it.IsUsed = true
		it.UsedByPackage = &pkg
		it.UsedByTeam = in.TeamID
		out = append(out, it.Question)
	}

	return out, nil
}

// AssemblePackage draws the three questions of a package for a team.
// Every value is checked before anything is drawn, so a short bank is
// left exactly as it was.
func AssemblePackage(bank *models.QuestionBank, picker random.Picker, pkgType models.PackageType, teamID string) (*models.Package, error) {
	composition, ok := Compositions[pkgType]
	if !ok {
		return nil, fmt.Errorf("%w: unknown package type %d", gameerr.ErrInvalidInput, pkgType)
	}

	need := map[int]int{}
	for _, v := range composition {
		need[v]++
	}

	values := make([]int, 0, len(need))
	for v := range need {
		values = append(values, v)
	}
	sort.Ints(values)

	available := Available(bank)
	for _, v := range values {
		if available[v] < need[v] {
			return nil, fmt.Errorf("%w: package %d needs %d of %d points, %d left",
				gameerr.ErrInsufficientInventory, pkgType, need[v], v, available[v])
		}
	}

	drawn := map[int][]models.Question{}
	for _, v := range values {
		qs, err := Draw(bank, picker, DrawInput{PointValue: v, Count: need[v], Package: pkgType, TeamID: teamID})
		if err != nil {
			return nil, err
		}
		drawn[v] = qs
	}

	pkg := &models.Package{Type: pkgType, OwnerTeam: teamID, Questions: make([]models.Question, 0, len(composition))}
	for i, v := range composition {
		q := drawn[v][0]
		drawn[v] = drawn[v][1:]
		q.Order = i + 1
		pkg.Questions = append(pkg.Questions, q)
	}

	return pkg, nil
}

// Reset clears every usage flag and ownership tag
func Reset(bank *models.QuestionBank) {
	for _, it := range bank.Items {
		it.IsUsed = false
		it.UsedByPackage = nil
		it.UsedByTeam = ""
	}
}

// Validate checks a bank loaded from configuration
func Validate(bank *models.QuestionBank) error {
	seen := map[string]bool{}
	for _, it := range bank.Items {
		if it.ID == "" {
			return fmt.Errorf("%w: bank item without id", gameerr.ErrInvalidInput)
		}
		if seen[it.ID] {
			return fmt.Errorf("%w: duplicate bank item %s", gameerr.ErrInvalidInput, it.ID)
		}
		seen[it.ID] = true

		switch it.PointValue {
		case 10, 20, 30:
		default:
			return fmt.Errorf("%w: bank item %s has %d points", gameerr.ErrInvalidInput, it.ID, it.PointValue)
		}

		if it.Text == "" {
			return fmt.Errorf("%w: bank item %s has no text", gameerr.ErrInvalidInput, it.ID)
		}
	}
	return nil
}
