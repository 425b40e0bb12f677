package utils

import "fmt"

// ExampleShortLink показывает, как из базового адреса и токена получается короткая ссылка.
func ExampleShortLink() {
	fmt.Println(ShortLink("http://localhost:8080/", "aZ09-_"))
	// Output: http://localhost:8080/r/aZ09-_
}
