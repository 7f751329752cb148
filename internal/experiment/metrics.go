package experiment

// Confusion accumulates a confusion matrix over minibatch predictions.
type Confusion struct {
	classes int
	counts  []int // actual*classes + predicted
}

func NewConfusion(classes int) *Confusion {
	return &Confusion{classes: classes, counts: make([]int, classes*classes)}
}

func (c *Confusion) Observe(actual, predicted int) {
	c.counts[actual*c.classes+predicted]++
}

func (c *Confusion) Classes() int { return c.classes }

func (c *Confusion) Count(actual, predicted int) int {
	return c.counts[actual*c.classes+predicted]
}

func (c *Confusion) Total() int {
	total := 0
	for _, n := range c.counts {
		total += n
	}
	return total
}

// Accuracy is the fraction of observations on the matrix diagonal.
func (c *Confusion) Accuracy() float64 {
	total := c.Total()
	if total == 0 {
		return 0
	}
	correct := 0
	for i := 0; i < c.classes; i++ {
		correct += c.counts[i*c.classes+i]
	}
	return float64(correct) / float64(total)
}

// Precision for one class: true positives over predicted positives.
// Classes never predicted score zero.
func (c *Confusion) Precision(class int) float64 {
	predicted := 0
	for actual := 0; actual < c.classes; actual++ {
		predicted += c.counts[actual*c.classes+class]
	}
	if predicted == 0 {
		return 0
	}
	return float64(c.counts[class*c.classes+class]) / float64(predicted)
}

// Recall for one class: true positives over actual positives. Classes with
// no observations score zero.
func (c *Confusion) Recall(class int) float64 {
	actual := 0
	for predicted := 0; predicted < c.classes; predicted++ {
		actual += c.counts[class*c.classes+predicted]
	}
	if actual == 0 {
		return 0
	}
	return float64(c.counts[class*c.classes+class]) / float64(actual)
}

func (c *Confusion) MacroPrecision() float64 {
	sum := 0.0
	for i := 0; i < c.classes; i++ {
		sum += c.Precision(i)
	}
	return sum / float64(c.classes)
}

func (c *Confusion) MacroRecall() float64 {
	sum := 0.0
	for i := 0; i < c.classes; i++ {
		sum += c.Recall(i)
	}
	return sum / float64(c.classes)
}

// Matrix returns the counts as rows of actual class by predicted class.
func (c *Confusion) Matrix() [][]int {
	rows := make([][]int, c.classes)
	for i := range rows {
		rows[i] = append([]int(nil), c.counts[i*c.classes:(i+1)*c.classes]...)
	}
	return rows
}

// epochStats averages loss over the batches of one pass and carries the
// pass confusion matrix.
type epochStats struct {
	loss    float64
	batches int
	conf    *Confusion
}

func newEpochStats(classes int) *epochStats {
	return &epochStats{conf: NewConfusion(classes)}
}

func (s *epochStats) observeBatch(loss float64, labels []int32, predicted []int) {
	s.loss += loss
	s.batches++
	for i, actual := range labels {
		s.conf.Observe(int(actual), predicted[i])
	}
}

func (s *epochStats) meanLoss() float64 {
	if s.batches == 0 {
		return 0
	}
	return s.loss / float64(s.batches)
}
