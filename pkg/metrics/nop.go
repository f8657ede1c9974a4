package metrics

// Nop заглушка Recorder для тестов и запуска без метрик
type Nop struct{}

func (Nop) ObserveCreated()                  {}
func (Nop) ObserveConflict(string)           {}
func (Nop) ObserveCodeRetry()                {}
func (Nop) ObserveTransition(string, string) {}
func (Nop) ObservePublishFailure()           {}
