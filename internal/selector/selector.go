package selector

import (
	"fmt"

	"github.com/mselser95/hoops-edge/pkg/oddsmath"
	"github.com/mselser95/hoops-edge/pkg/types"
)

// Select picks exactly one side for every market type of game that is
// quoted on both sides. The chosen side is the one with the lower implied
// probability, i.e. the higher decimal price. Ties go to away (spread,
// moneyline) or under (total).
//
// Market types that cannot be evaluated are reported as *types.MarketError
// values in the second return; the remaining market types still produce
// selections. A market type with no quotes at all is silently absent.
func Select(game *types.Game) ([]types.MarketSelection, []error) {
	selections := make([]types.MarketSelection, 0, len(types.MarketTypes))
	var errs []error

	for _, m := range types.MarketTypes {
		quotes := game.QuotesFor(m)
		if len(quotes) == 0 {
			continue
		}

		sel, err := selectMarket(game.ID, m, quotes)
		if err != nil {
			errs = append(errs, &types.MarketError{GameID: game.ID, MarketType: m, Err: err})
			continue
		}
		selections = append(selections, sel)
	}

	return selections, errs
}

func selectMarket(gameID string, m types.MarketType, quotes []types.Quote) (types.MarketSelection, error) {
	preferredSide, otherSide := m.Sides()

	var preferred, other *types.Quote
	for i := range quotes {
		q := &quotes[i]
		if !oddsmath.ValidDecimal(q.DecimalOdds) {
			return types.MarketSelection{}, fmt.Errorf("%w: %s priced at %v", types.ErrInvalidOdds, q.Side, q.DecimalOdds)
		}

		switch q.Side {
		case preferredSide:
			if preferred != nil {
				return types.MarketSelection{}, fmt.Errorf("%w: side %s quoted twice", types.ErrInvalidInput, q.Side)
			}
			preferred = q
		case otherSide:
			if other != nil {
				return types.MarketSelection{}, fmt.Errorf("%w: side %s quoted twice", types.ErrInvalidInput, q.Side)
			}
			other = q
		default:
			return types.MarketSelection{}, fmt.Errorf("%w: side %s does not belong to %s", types.ErrInvalidInput, q.Side, m)
		}
	}

	if preferred == nil || other == nil {
		return types.MarketSelection{}, types.ErrIncompleteMarket
	}

	chosen, opposing := *preferred, *other
	if other.DecimalOdds > preferred.DecimalOdds {
		chosen, opposing = *other, *preferred
	}

	return types.MarketSelection{
		GameID:     gameID,
		MarketType: m,
		Quote:      chosen,
		Opposing:   opposing,
		Rationale:  rationale(chosen, opposing),
	}, nil
}

func rationale(chosen, opposing types.Quote) string {
	if chosen.DecimalOdds == opposing.DecimalOdds {
		return fmt.Sprintf("%s and %s priced equally at %.3f, taking %s",
			chosen.Side, opposing.Side, chosen.DecimalOdds, chosen.Side)
	}
	return fmt.Sprintf("%s at %.3f (implied %.1f%%) is the underpriced side vs %s at %.3f (implied %.1f%%)",
		chosen.Label(), chosen.DecimalOdds, chosen.ImpliedProbability()*100,
		opposing.Label(), opposing.DecimalOdds, opposing.ImpliedProbability()*100)
}
