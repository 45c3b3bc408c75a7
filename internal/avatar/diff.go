package avatar

// Changes is the equip delta between two avatars, in the shape the backend's
// update_avatar_options procedure takes.
type Changes struct {
	Deactivate []int64
	Activate   []int64
}

func (c Changes) Empty() bool {
	return len(c.Deactivate) == 0 && len(c.Activate) == 0
}

// Diff compares the saved and working avatars category by category. A
// category whose option id changed deactivates the old id and activates the
// new one; a category only in the working avatar is activated; a category
// dropped from it is deactivated. Ids come out in category menu order.
func Diff(original, selected []Option) Changes {
	before := byCategory(original)
	after := byCategory(selected)

	var ch Changes
	for _, c := range categoriesOf(original, selected) {
		old, hadOld := before[c]
		cur, hasCur := after[c]

		switch {
		case hadOld && hasCur:
			if old.ID != cur.ID {
				ch.Deactivate = append(ch.Deactivate, old.ID)
				ch.Activate = append(ch.Activate, cur.ID)
			}
		case hadOld:
			ch.Deactivate = append(ch.Deactivate, old.ID)
		case hasCur:
			ch.Activate = append(ch.Activate, cur.ID)
		}
	}
	return ch
}

func byCategory(options []Option) map[Category]Option {
	m := make(map[Category]Option, len(options))
	for _, o := range options {
		m[o.Category] = o
	}
	return m
}

// categoriesOf returns the categories used by either set: known categories
// in menu order first, then unknown ones in order of appearance.
func categoriesOf(sets ...[]Option) []Category {
	used := make(map[Category]bool)
	var extra []Category
	for _, set := range sets {
		for _, o := range set {
			if !used[o.Category] && !o.Category.Valid() {
				extra = append(extra, o.Category)
			}
			used[o.Category] = true
		}
	}

	var out []Category
	for _, c := range Categories {
		if used[c] {
			out = append(out, c)
		}
	}
	return append(out, extra...)
}
