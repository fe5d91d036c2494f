package metric

// MetricItem - 一个独立的metric模块对应一个MetricItem
// 实现时要保证JSONString可以被并发调用
type MetricItem interface {
	JSONString() string
}

// MetricFunc 把一个函数适配成MetricItem
type MetricFunc func() string

func (f MetricFunc) JSONString() string {
	return f()
}
