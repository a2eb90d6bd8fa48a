package cart

// EmptyCartMessage is the placeholder rendered when the cart has no items.
const EmptyCartMessage = "Your cart is empty."

// RowView is one rendered cart row. Index is the row's position in the
// cart and is what remove controls target.
type RowView struct {
	Index int
	Name  string
	Price string
}

// View is the projection of the cart state onto the page.
type View struct {
	Rows             []RowView
	EmptyPlaceholder string
	Total            string
}

// Empty reports whether the view renders the empty-cart placeholder.
func (v View) Empty() bool {
	return len(v.Rows) == 0
}

// Surface is the page the cart renders onto. Render replaces every
// previously rendered row.
type Surface interface {
	Render(v View)
	SetCount(n int)
	SetPanelOpen(open bool)
	SetRowOffset(index int, px float64)
	SetRowDragging(index int, active bool)
}

// Project derives the view from the items. It does not retain items.
func Project(items []LineItem) View {
	if len(items) == 0 {
		return View{
			EmptyPlaceholder: EmptyCartMessage,
			Total:            FormatPrice(0),
		}
	}
	rows := make([]RowView, len(items))
	for i, item := range items {
		rows[i] = RowView{Index: i, Name: item.Name, Price: item.Price}
	}
	return View{
		Rows:  rows,
		Total: FormatPrice(totalCents(items, nil)),
	}
}
