package avatar

// Seeds are the starting characters offered on creation.
var Seeds = []string{
	"Jocelyn", "Andrea", "Katherine", "Aiden", "Jameson",
	"Sophia", "Mason", "Jade", "Alexander", "Oliver",
	"Kingston", "Maria", "Leo", "Brian", "Aidan",
}

func NextSeed(i int) int {
	return (normSeed(i) + 1) % len(Seeds)
}

func PrevSeed(i int) int {
	return (normSeed(i) - 1 + len(Seeds)) % len(Seeds)
}

func normSeed(i int) int {
	n := len(Seeds)
	return ((i % n) + n) % n
}
