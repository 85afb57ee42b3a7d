package photo

import (
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		ratio float64
		want  Category
	}{
		{0.5, Tall},
		{0.94, Tall},
		{0.95, Square},
		{1.0, Square},
		{1.2, Square},
		{1.21, Wide},
		{3.0, Wide},
	}

	for _, tt := range tests {
		if got := Classify(tt.ratio); got != tt.want {
			t.Errorf("Classify(%v) = %v, want %v", tt.ratio, got, tt.want)
		}
	}
}

func TestCrosses(t *testing.T) {
	if !Crosses(Wide, Tall) || !Crosses(Tall, Wide) {
		t.Error("Wide/Tall should cross")
	}
	for _, c := range []Category{Square, Tall, Wide} {
		if Crosses(Square, c) || Crosses(c, Square) {
			t.Errorf("Square should never cross %v", c)
		}
	}
	if Crosses(Wide, Wide) {
		t.Error("Wide/Wide should not cross")
	}
}

func TestAspect(t *testing.T) {
	tests := []struct {
		name  string
		photo Photo
		want  float64
	}{
		{"explicit ratio", Photo{Ratio: 1.5, Width: 100, Height: 100}, 1.5},
		{"from dimensions", Photo{Width: 4000, Height: 3000}, 4.0 / 3.0},
		{"unknown", Photo{}, 1.0},
		{"width only", Photo{Width: 800}, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.photo.Aspect(); got != tt.want {
				t.Errorf("Aspect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMegapixels(t *testing.T) {
	p := Photo{Width: 6000, Height: 4000}
	if got := p.Megapixels(); got != 24 {
		t.Errorf("Megapixels() = %v, want 24", got)
	}
	if got := (Photo{}).Megapixels(); got != 0 {
		t.Errorf("Megapixels() = %v, want 0", got)
	}
}

func TestNormalize(t *testing.T) {
	p := Photo{Path: "trip/day1/IMG_0001.JPG", Width: 3000, Height: 2000}.Normalize()
	if p.Ratio != 1.5 {
		t.Errorf("Ratio = %v, want 1.5", p.Ratio)
	}
	if p.Filename != "IMG_0001.JPG" {
		t.Errorf("Filename = %q, want %q", p.Filename, "IMG_0001.JPG")
	}

	q := Photo{Path: "a.jpg", Width: 1000, Height: 3000}.Normalize()
	if q.Ratio != 0.3333 {
		t.Errorf("Ratio = %v, want 0.3333", q.Ratio)
	}

	keep := Photo{Path: "b.jpg", Filename: "custom", Ratio: 2, Width: 10, Height: 10}.Normalize()
	if keep.Ratio != 2 || keep.Filename != "custom" {
		t.Errorf("Normalize() overwrote explicit fields: %+v", keep)
	}
}

func TestCounts(t *testing.T) {
	photos := []Photo{{Ratio: 0.5}, {Ratio: 0.6}, {Ratio: 1.0}, {Ratio: 1.8}}
	tall, wide := Counts(photos)
	if tall != 2 || wide != 1 {
		t.Errorf("Counts() = (%d, %d), want (2, 1)", tall, wide)
	}
}

func TestSortChronological(t *testing.T) {
	t0 := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Minute)

	photos := []Photo{
		{Path: "c", Filename: "c.jpg", TakenAt: &t1},
		{Path: "b", Filename: "b.jpg", TakenAt: &t0},
		{Path: "z", Filename: "z.jpg"},
		{Path: "a", Filename: "a.jpg", TakenAt: &t0},
		{Path: "y", Filename: "y.jpg"},
	}

	got := Paths(SortChronological(photos))
	want := []string{"y", "z", "a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SortChronological() = %v, want %v", got, want)
		}
	}

	if photos[0].Path != "c" {
		t.Error("SortChronological() modified its input")
	}
}
