package main

import "salonchat_backend/internal/app"

func main() {
	app.Run()
}
