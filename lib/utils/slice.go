package utils

func Map[T any, R any](a []T, mapper func(T) R) []R {
	res := make([]R, len(a))
	for i, v := range a {
		res[i] = mapper(v)
	}
	return res
}

func Filter[T any](a []T, keep func(T) bool) []T {
	res := make([]T, 0, len(a))
	for _, v := range a {
		if keep(v) {
			res = append(res, v)
		}
	}
	return res
}

func SumBy[T any](a []T, value func(T) float64) float64 {
	var total float64
	for _, v := range a {
		total += value(v)
	}
	return total
}
