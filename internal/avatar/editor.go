package avatar

// State is the customization screen: the avatar as last saved (Original), the
// working copy being edited (Selected), the category being browsed, and
// whether the purchase confirmation is open.
type State struct {
	SelectedCategory  Category
	Original          []Option
	Selected          []Option
	ShowPurchaseModal bool
}

// Action is a state transition understood by Reduce.
type Action interface {
	isAction()
}

type (
	// Load sets both the saved and working avatar, e.g. after fetching the
	// user's active options.
	Load struct{ Options []Option }

	// ChangeCategory switches the browsed category.
	ChangeCategory struct{ Category Category }

	// Equip puts an option on the working avatar, replacing the option of the
	// same category.
	Equip struct{ Option Option }

	TogglePurchaseModal struct{}

	// RemoveUnowned drops one unowned pick from the cart, putting back the
	// saved option of that category.
	RemoveUnowned struct{ Option Option }

	// Reset returns the working avatar to the saved one.
	Reset struct{}

	// DiscardAllUnowned puts back the saved option for every unowned pick.
	DiscardAllUnowned struct{}

	// MarkPurchased flags the working option with this id as owned.
	MarkPurchased struct{ ID int64 }

	// AfterSave makes the working avatar the saved one.
	AfterSave struct{}
)

func (Load) isAction()                {}
func (ChangeCategory) isAction()      {}
func (Equip) isAction()               {}
func (TogglePurchaseModal) isAction() {}
func (RemoveUnowned) isAction()       {}
func (Reset) isAction()               {}
func (DiscardAllUnowned) isAction()   {}
func (MarkPurchased) isAction()       {}
func (AfterSave) isAction()           {}

// NewState is the initial editor state before the avatar is loaded.
func NewState() State {
	return State{SelectedCategory: Accessories}
}

// Reduce applies a to s and returns the new state. It never mutates s.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case Load:
		s.Original = clone(a.Options)
		s.Selected = clone(a.Options)

	case ChangeCategory:
		s.SelectedCategory = a.Category

	case Equip:
		s.Selected = equip(s.Selected, a.Option)

	case TogglePurchaseModal:
		s.ShowPurchaseModal = !s.ShowPurchaseModal

	case RemoveUnowned:
		s.Selected = restoreCategory(s.Selected, s.Original, a.Option.Category)
		s.ShowPurchaseModal = len(Cart(s)) > 0 || HasUnsavedChanges(s)

	case Reset:
		s.Selected = clone(s.Original)

	case DiscardAllUnowned:
		selected := clone(s.Selected)
		for _, o := range s.Selected {
			if !o.Owned {
				selected = restoreCategory(selected, s.Original, o.Category)
			}
		}
		s.Selected = selected

	case MarkPurchased:
		selected := clone(s.Selected)
		for i := range selected {
			if selected[i].ID == a.ID {
				selected[i].Owned = true
			}
		}
		s.Selected = selected

	case AfterSave:
		saved := clone(s.Selected)
		for i := range saved {
			saved[i].Owned = true
		}
		s.Original = saved
		s.Selected = clone(saved)
	}
	return s
}

// Cart lists the working options the user does not own yet, one entry per
// option id. Options present in the saved avatar are owned by definition and
// never appear here.
func Cart(s State) []Option {
	saved := make(map[int64]struct{}, len(s.Original))
	for _, o := range s.Original {
		saved[o.ID] = struct{}{}
	}

	var cart []Option
	seen := make(map[int64]struct{})
	for _, o := range s.Selected {
		if o.Owned {
			continue
		}
		if _, ok := saved[o.ID]; ok {
			continue
		}
		if _, ok := seen[o.ID]; ok {
			continue
		}
		seen[o.ID] = struct{}{}
		cart = append(cart, o)
	}
	return cart
}

// CartTotal is the coin price of Cart(s).
func CartTotal(s State) int {
	total := 0
	for _, o := range Cart(s) {
		total += o.Price
	}
	return total
}

// HasUnsavedChanges reports whether the working avatar differs from the saved
// one in any category.
func HasUnsavedChanges(s State) bool {
	return !Diff(s.Original, s.Selected).Empty()
}

// Equipped returns the working option for c, if any.
func Equipped(s State, c Category) (Option, bool) {
	return find(s.Selected, c)
}

func equip(options []Option, o Option) []Option {
	out := clone(options)
	for i := range out {
		if out[i].Category == o.Category {
			out[i] = o
			return out
		}
	}
	return append(out, o)
}

// restoreCategory replaces the option of category c in selected with the
// saved option, or removes it when nothing of that category was saved.
func restoreCategory(selected, original []Option, c Category) []Option {
	saved, ok := find(original, c)

	out := make([]Option, 0, len(selected))
	for _, o := range selected {
		if o.Category != c {
			out = append(out, o)
			continue
		}
		if ok {
			out = append(out, saved)
		}
	}
	return out
}

func find(options []Option, c Category) (Option, bool) {
	for _, o := range options {
		if o.Category == c {
			return o, true
		}
	}
	return Option{}, false
}

func clone(options []Option) []Option {
	if options == nil {
		return nil
	}
	out := make([]Option, len(options))
	copy(out, options)
	return out
}
