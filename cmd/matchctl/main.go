package main

func main() {
	Execute(Version)
}
