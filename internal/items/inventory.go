package items

import "github.com/google/uuid"

// Has reports whether list holds an item of one of kinds, either directly
// or inside a container.
func Has(list []Item, kinds []Kind) bool {
	for _, it := range list {
		if ContainsKind(kinds, it.Kind) {
			return true
		}
		if it.IsContainer() && Has(it.Items, kinds) {
			return true
		}
	}
	return false
}

// Take removes and returns the first item of one of kinds. Direct matches win
// over container contents at the same level; containers are searched in order.
func Take(list *[]Item, kinds []Kind) (Item, bool) {
	for i, it := range *list {
		if ContainsKind(kinds, it.Kind) {
			*list = append((*list)[:i:i], (*list)[i+1:]...)
			return it, true
		}
	}
	for i := range *list {
		c := &(*list)[i]
		if !c.IsContainer() {
			continue
		}
		if found, ok := Take(&c.Items, kinds); ok {
			return found, true
		}
	}
	return Item{}, false
}

// Remove deletes the item with the given id from list. Only the top level
// is searched.
func Remove(list *[]Item, id uuid.UUID) bool {
	for i, it := range *list {
		if it.ID == id {
			*list = append((*list)[:i:i], (*list)[i+1:]...)
			return true
		}
	}
	return false
}

// Count returns how many items of the given kinds list holds, including
// container contents.
func Count(list []Item, kinds []Kind) int {
	n := 0
	for _, it := range list {
		if ContainsKind(kinds, it.Kind) {
			n++
		}
		if it.IsContainer() {
			n += Count(it.Items, kinds)
		}
	}
	return n
}

// Clone deep-copies list, including container contents. Empty lists come
// back nil so copies compare equal however they were emptied.
func Clone(list []Item) []Item {
	if len(list) == 0 {
		return nil
	}
	out := make([]Item, len(list))
	for i, it := range list {
		it.Items = Clone(it.Items)
		out[i] = it
	}
	return out
}
