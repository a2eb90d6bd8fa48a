package cart

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestProject(t *testing.T) {
	tests := []struct {
		name  string
		items []LineItem
		want  View
	}{
		{
			name:  "empty",
			items: nil,
			want:  View{EmptyPlaceholder: EmptyCartMessage, Total: "$0.00"},
		},
		{
			name: "two items",
			items: []LineItem{
				{Name: "A", Price: "$10.00"},
				{Name: "B", Price: "$5.50"},
			},
			want: View{
				Rows: []RowView{
					{Index: 0, Name: "A", Price: "$10.00"},
					{Index: 1, Name: "B", Price: "$5.50"},
				},
				Total: "$15.50",
			},
		},
		{
			name:  "grouped price",
			items: []LineItem{{Name: "TV", Price: "$1,299.00"}},
			want: View{
				Rows:  []RowView{{Index: 0, Name: "TV", Price: "$1,299.00"}},
				Total: "$1299.00",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Project(tt.items)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Project mismatch (-want +got):\n%s", diff)
			}
			if got.Empty() != (len(tt.items) == 0) {
				t.Errorf("Empty() = %v", got.Empty())
			}
		})
	}
}

func TestProjectDoesNotAliasItems(t *testing.T) {
	items := []LineItem{{Name: "A", Price: "$1.00"}}
	v := Project(items)
	items[0].Name = "changed"
	if v.Rows[0].Name != "A" {
		t.Error("view aliases the item slice")
	}
}
