package domain

// KeyPrefix namespaces every key headrag writes to the shared Redis instance.
const KeyPrefix = "headrag:"
