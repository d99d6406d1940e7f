package format

// Quote selects the canonical string quote.
type Quote byte

const (
	QuoteDouble Quote = '"'
	QuoteSingle Quote = '\''
)

type Options struct {
	LineWidth   int
	IndentWidth int
	Quote       Quote
}

func (o Options) withDefaults() Options {
	if o.LineWidth == 0 {
		o.LineWidth = 88
	}
	if o.IndentWidth == 0 {
		o.IndentWidth = 4
	}
	if o.Quote == 0 {
		o.Quote = QuoteDouble
	}
	return o
}
